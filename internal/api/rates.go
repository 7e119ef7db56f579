package api

import (
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"gastrade/m/domain"
)

type customerRateRequest struct {
	CustomerName string          `json:"customer_name"`
	ProductName  string          `json:"product_name"`
	Rate         decimal.Decimal `json:"rate"`
}

func (req *customerRateRequest) validate() string {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.CustomerName == "" || req.ProductName == "" {
		return "customer_name and product_name are required"
	}
	if req.Rate.IsNegative() {
		return "rate cannot be negative"
	}
	return ""
}

func (h *Handler) listCustomerRates(w http.ResponseWriter, r *http.Request) {
	rates := []domain.CustomerRate{}
	clauses := []string{"1=1"}
	args := []any{}
	if customer := strings.TrimSpace(r.URL.Query().Get("customer_name")); customer != "" {
		clauses = append(clauses, "customer_name = ? COLLATE NOCASE")
		args = append(args, customer)
	}
	if product := strings.TrimSpace(r.URL.Query().Get("productName")); product != "" {
		clauses = append(clauses, "product_name = ? COLLATE NOCASE")
		args = append(args, product)
	}
	query := `SELECT customer_name, product_name, rate, updated_at FROM customer_rates WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY customer_name, product_name`
	if err := h.db.Select(&rates, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list rates")
		return
	}
	respondJSON(w, http.StatusOK, rates)
}

func (h *Handler) upsertCustomerRate(w http.ResponseWriter, r *http.Request) {
	var req customerRateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if err := upsertRate(h.db, req); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save rate")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) batchUpsertCustomerRates(w http.ResponseWriter, r *http.Request) {
	var reqs []customerRateRequest
	if err := decodeJSON(r, &reqs); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(reqs) == 0 {
		respondError(w, http.StatusBadRequest, "no rates provided")
		return
	}
	for i := range reqs {
		if msg := reqs[i].validate(); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start batch")
		return
	}
	defer tx.Rollback()
	for _, req := range reqs {
		if err := upsertRate(tx, req); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to save rates")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize batch")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "saved", "count": len(reqs)})
}

func upsertRate(e sqlx.Execer, req customerRateRequest) error {
	_, err := e.Exec(`INSERT INTO customer_rates (customer_name, product_name, rate, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(customer_name, product_name)
        DO UPDATE SET rate = excluded.rate, updated_at = CURRENT_TIMESTAMP`,
		req.CustomerName, req.ProductName, req.Rate.String())
	return err
}
