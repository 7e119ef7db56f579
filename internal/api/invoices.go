package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"gastrade/m/domain"
	"gastrade/m/internal/fiscal"
	"gastrade/m/internal/ledger"
)

type invoiceLineRequest struct {
	ProductName string     `json:"productName"`
	SupplyQty   ledger.Qty `json:"supplyQty"`
	ReceivedQty ledger.Qty `json:"receivedQty"`
}

// invoiceRequest mirrors the historical record shape: either a single
// productName/supplyQty/receivedQty triple or a products array for
// multi-product invoices.
type invoiceRequest struct {
	InvoiceNo       string               `json:"invoiceNo"`
	Date            string               `json:"date"`
	AccountName     string               `json:"accountName"`
	ShipToAddress   string               `json:"shipToAddress"`
	TransporterName string               `json:"transporterName"`
	TransporterFare decimal.Decimal      `json:"transporterFare"`
	Container       string               `json:"container"`
	PaymentOption   string               `json:"paymentOption"`
	Remark          string               `json:"remark"`
	FinancialYearID string               `json:"financial_year_id"`
	ProductName     string               `json:"productName"`
	SupplyQty       ledger.Qty           `json:"supplyQty"`
	ReceivedQty     ledger.Qty           `json:"receivedQty"`
	Products        []invoiceLineRequest `json:"products,omitempty"`
}

// lines flattens the request to its product lines, dropping unusable names
// the same way the ledger does.
func (req invoiceRequest) lines() []invoiceLineRequest {
	src := req.Products
	if len(src) == 0 {
		src = []invoiceLineRequest{{ProductName: req.ProductName, SupplyQty: req.SupplyQty, ReceivedQty: req.ReceivedQty}}
	}
	out := make([]invoiceLineRequest, 0, len(src))
	for _, l := range src {
		name := strings.TrimSpace(l.ProductName)
		if name == "" || strings.EqualFold(name, "N/A") {
			continue
		}
		l.ProductName = name
		out = append(out, l)
	}
	return out
}

func (req invoiceRequest) validate() error {
	if strings.TrimSpace(req.AccountName) == "" {
		return errors.New("accountName is required")
	}
	if _, err := time.Parse(fiscal.DateLayout, req.Date); err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	if len(req.lines()) == 0 {
		return errors.New("at least one product line is required")
	}
	if req.TransporterFare.IsNegative() {
		return errors.New("transporterFare cannot be negative")
	}
	return nil
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request)  { h.listInvoices(w, r, fiscal.TableSales) }
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) { h.createInvoice(w, r, fiscal.TableSales) }
func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) { h.updateInvoice(w, r, fiscal.TableSales) }
func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) { h.deleteInvoice(w, r, fiscal.TableSales) }

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	h.listInvoices(w, r, fiscal.TablePurchases)
}
func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	h.createInvoice(w, r, fiscal.TablePurchases)
}
func (h *Handler) updatePurchase(w http.ResponseWriter, r *http.Request) {
	h.updateInvoice(w, r, fiscal.TablePurchases)
}
func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	h.deleteInvoice(w, r, fiscal.TablePurchases)
}

const invoiceColumns = `id, invoice_no, date, account_name, ship_to_address, transporter_name,
    transporter_fare, container, payment_option, remark,
    COALESCE(financial_year_id, '') AS financial_year_id, product_name, supply_qty, received_qty, created_at`

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request, table string) {
	year, err := fiscal.Resolve(h.db, strings.TrimSpace(r.URL.Query().Get("financialYearId")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	scope, args := fiscal.ScopeClause(year)
	clauses := []string{scope}

	if account := firstQueryValue(r, "accountName", "name", "customer_name"); account != "" {
		clauses = append(clauses, "account_name = ? COLLATE NOCASE")
		args = append(args, account)
	}
	if product := strings.TrimSpace(r.URL.Query().Get("productName")); product != "" {
		clauses = append(clauses, "product_name = ? COLLATE NOCASE")
		args = append(args, product)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY date DESC, invoice_no DESC, id`,
		invoiceColumns, table, strings.Join(clauses, " AND "))

	rows := []domain.InvoiceRow{}
	if err := h.db.Select(&rows, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list records")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func firstQueryValue(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.URL.Query().Get(k)); v != "" {
			return v
		}
	}
	return ""
}

// createInvoice writes every line of a (possibly multi-product) invoice in
// one transaction. The invoice number is minted inside the same transaction
// when the caller did not supply one, so concurrent creates for the same
// account cannot collide.
func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request, table string) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start transaction")
		return
	}
	defer tx.Rollback()

	year, err := fiscal.Resolve(tx, req.FinancialYearID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if year.Closed {
		respondError(w, http.StatusConflict, "financial year is closed")
		return
	}

	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	if invoiceNo == "" {
		invoiceNo, err = fiscal.NextInvoiceNumber(tx, table, req.AccountName, year.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to allocate invoice number")
			return
		}
	} else {
		var exists bool
		query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE invoice_no = ? AND account_name = ? COLLATE NOCASE AND financial_year_id = ?)`, table)
		if err := tx.Get(&exists, query, invoiceNo, req.AccountName, year.ID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to validate invoice number")
			return
		}
		if exists {
			respondError(w, http.StatusConflict, "invoice number already exists for this account and year")
			return
		}
	}

	if err := insertInvoiceLines(tx, table, invoiceNo, year.ID, req); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save invoice")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize invoice")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"invoiceNo":         invoiceNo,
		"financial_year_id": year.ID,
		"lines":             len(req.lines()),
	})
}

// insertInvoiceLines writes one row per product line. Only the first row
// carries the transporter fare; the rest store zero so fare sums are not
// double counted across a multi-product invoice.
func insertInvoiceLines(tx *sqlx.Tx, table, invoiceNo, yearID string, req invoiceRequest) error {
	query := fmt.Sprintf(`INSERT INTO %s
        (invoice_no, date, account_name, ship_to_address, transporter_name, transporter_fare,
         container, payment_option, remark, financial_year_id, product_name, supply_qty, received_qty)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)

	for i, line := range req.lines() {
		fare := decimal.Zero
		if i == 0 {
			fare = req.TransporterFare
		}
		if _, err := tx.Exec(query,
			invoiceNo, req.Date, strings.TrimSpace(req.AccountName), req.ShipToAddress,
			req.TransporterName, fare.String(), req.Container, req.PaymentOption, req.Remark,
			yearID, line.ProductName, int64(line.SupplyQty), int64(line.ReceivedQty)); err != nil {
			return fmt.Errorf("failed to insert invoice line %d: %w", i, err)
		}
	}
	return nil
}

// updateInvoice replaces every line of an invoice in one transaction. A
// failure anywhere leaves the invoice untouched.
func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request, table string) {
	invoiceNo := chi.URLParam(r, "invoiceNo")
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	originalAccount := firstQueryValue(r, "accountName", "name")
	if originalAccount == "" {
		originalAccount = strings.TrimSpace(req.AccountName)
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start transaction")
		return
	}
	defer tx.Rollback()

	year, err := fiscal.Resolve(tx, req.FinancialYearID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if year.Closed {
		respondError(w, http.StatusConflict, "financial year is closed")
		return
	}

	del := fmt.Sprintf(`DELETE FROM %s WHERE invoice_no = ? AND account_name = ? COLLATE NOCASE AND financial_year_id = ?`, table)
	res, err := tx.Exec(del, invoiceNo, originalAccount, year.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update invoice")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "invoice not found")
		return
	}

	if err := insertInvoiceLines(tx, table, invoiceNo, year.ID, req); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save invoice")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize invoice")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "updated",
		"invoiceNo": invoiceNo,
		"lines":     len(req.lines()),
	})
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request, table string) {
	invoiceNo := chi.URLParam(r, "invoiceNo")
	account := firstQueryValue(r, "accountName", "name")
	if account == "" {
		respondError(w, http.StatusBadRequest, "accountName is required")
		return
	}
	year, err := fiscal.Resolve(h.db, strings.TrimSpace(r.URL.Query().Get("financialYearId")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE invoice_no = ? AND account_name = ? COLLATE NOCASE AND financial_year_id = ?`, table)
	res, err := h.db.Exec(query, invoiceNo, account, year.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete invoice")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "invoice not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// nextInvoiceNumber is a read-only preview for forms. The authoritative
// number is still allocated inside the create transaction.
func (h *Handler) nextInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	account := firstQueryValue(r, "accountName", "name")
	if account == "" {
		respondError(w, http.StatusBadRequest, "accountName is required")
		return
	}
	table := fiscal.TableSales
	if t := strings.TrimSpace(r.URL.Query().Get("type")); t == "purchase" {
		table = fiscal.TablePurchases
	}
	year, err := fiscal.Resolve(h.db, strings.TrimSpace(r.URL.Query().Get("financialYearId")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := fiscal.NextInvoiceNumber(h.db, table, account, year.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute invoice number")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"invoiceNo":         next,
		"financial_year_id": year.ID,
	})
}
