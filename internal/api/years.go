package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gastrade/m/domain"
	"gastrade/m/internal/fiscal"
	"gastrade/m/internal/ledger"
)

func (h *Handler) listFinancialYears(w http.ResponseWriter, r *http.Request) {
	years := []domain.FinancialYear{}
	if err := h.db.Select(&years,
		`SELECT id, label, start_date, end_date, is_current, closed, created_at FROM financial_years ORDER BY start_date`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list financial years")
		return
	}
	respondJSON(w, http.StatusOK, years)
}

type financialYearRequest struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	MakeCurrent bool   `json:"makeCurrent"`
}

func (h *Handler) createFinancialYear(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var req financialYearRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	start, err := time.Parse(fiscal.DateLayout, req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "startDate must be in YYYY-MM-DD format")
		return
	}
	end, err := time.Parse(fiscal.DateLayout, req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "endDate must be in YYYY-MM-DD format")
		return
	}
	if !end.After(start) {
		respondError(w, http.StatusBadRequest, "endDate must be after startDate")
		return
	}
	if req.ID == "" {
		req.ID = fiscal.NextLabel(start)
	}
	if req.Label == "" {
		req.Label = req.ID
	}

	// Years partition the timeline; overlapping windows would make date
	// fallback membership ambiguous.
	var overlaps bool
	if err := h.db.Get(&overlaps,
		`SELECT EXISTS(SELECT 1 FROM financial_years WHERE start_date <= ? AND end_date >= ?)`,
		req.EndDate, req.StartDate); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to validate year window")
		return
	}
	if overlaps {
		respondError(w, http.StatusConflict, "financial year overlaps an existing one")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start transaction")
		return
	}
	defer tx.Rollback()

	if req.MakeCurrent {
		if _, err := tx.Exec(`UPDATE financial_years SET is_current = 0`); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to switch current year")
			return
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO financial_years (id, label, start_date, end_date, is_current) VALUES (?, ?, ?, ?, ?)`,
		req.ID, req.Label, req.StartDate, req.EndDate, req.MakeCurrent); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "PRIMARY") {
			respondError(w, http.StatusConflict, "financial year already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create financial year")
		}
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize financial year")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": req.ID, "label": req.Label, "isCurrent": req.MakeCurrent})
}

func (h *Handler) setCurrentFinancialYear(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id := chi.URLParam(r, "id")

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start transaction")
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE financial_years SET is_current = 0`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to switch current year")
		return
	}
	res, err := tx.Exec(`UPDATE financial_years SET is_current = 1 WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to switch current year")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "financial year not found")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize switch")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "current year set", "id": id})
}

// processYearEnd closes the current year and opens the next one, snapshotting
// every product's computed closing stock as the new year's opening stock.
// One transaction, one way: a closed year stops accepting invoices.
func (h *Handler) processYearEnd(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start year-end")
		return
	}
	defer tx.Rollback()

	current, err := fiscal.Current(tx)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if current.Closed {
		respondError(w, http.StatusConflict, "current financial year is already closed")
		return
	}

	end, err := time.Parse(fiscal.DateLayout, current.EndDate)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "current year has an invalid end date")
		return
	}
	nextStart := end.AddDate(0, 0, 1)
	nextEnd := nextStart.AddDate(1, 0, -1)
	nextID := fiscal.NextLabel(nextStart)

	var exists bool
	if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM financial_years WHERE id = ?)`, nextID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to validate next year")
		return
	}
	if exists {
		respondError(w, http.StatusConflict, "next financial year already exists")
		return
	}

	products := []domain.Product{}
	if err := tx.Select(&products, `SELECT id, name, description, full_stock, empty_stock, created_at FROM products ORDER BY name`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load products")
		return
	}
	purchases, err := ledgerEntries(tx, fiscal.TablePurchases, current, "", "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load purchases")
		return
	}
	sales, err := ledgerEntries(tx, fiscal.TableSales, current, "", "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sales")
		return
	}

	if _, err := tx.Exec(
		`INSERT INTO financial_years (id, label, start_date, end_date, is_current) VALUES (?, ?, ?, ?, 1)`,
		nextID, nextID,
		nextStart.Format(fiscal.DateLayout), nextEnd.Format(fiscal.DateLayout)); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create next year")
		return
	}

	snapshots := 0
	for _, p := range products {
		opening, err := openingFor(tx, current, p)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to resolve opening stock")
			return
		}
		pos := ledger.ProductLedger(p.Name, opening, purchases, sales)
		if _, err := tx.Exec(
			`INSERT INTO opening_stocks (financial_year_id, product_name, full_stock, empty_stock) VALUES (?, ?, ?, ?)`,
			nextID, p.Name, pos.Filled(), pos.Empty()); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to snapshot closing stock")
			return
		}
		snapshots++
	}

	if _, err := tx.Exec(`UPDATE financial_years SET is_current = 0, closed = 1 WHERE id = ?`, current.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to close current year")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize year-end")
		return
	}

	h.log.Info("year-end processed",
		zap.String("closed", current.ID),
		zap.String("opened", nextID),
		zap.Int("products", snapshots))
	respondJSON(w, http.StatusOK, map[string]any{
		"closed":    current.ID,
		"opened":    nextID,
		"startDate": nextStart.Format(fiscal.DateLayout),
		"endDate":   nextEnd.Format(fiscal.DateLayout),
		"products":  snapshots,
	})
}
