package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gastrade/m/internal/fiscal"
	"gastrade/m/internal/ledger"
)

type tableTotals struct {
	Invoices    int64           `json:"invoices"`
	Supplied    int64           `json:"supplied"`
	Received    int64           `json:"received"`
	FareTotal   decimal.Decimal `json:"fareTotal"`
	RecordCount int64           `json:"records"`
}

// tableSummary aggregates one invoice table for the dashboard. Fares are
// summed as decimals in Go so paisa amounts stay exact; the schema stores
// them as text for the same reason.
func (h *Handler) tableSummary(table string, scope string, args []any) (tableTotals, error) {
	var t tableTotals
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT invoice_no || '/' || account_name) AS invoices,
        COALESCE(SUM(supply_qty), 0) AS supplied,
        COALESCE(SUM(received_qty), 0) AS received,
        COUNT(*) AS records
        FROM %s WHERE %s`, table, scope)
	row := struct {
		Invoices int64 `db:"invoices"`
		Supplied int64 `db:"supplied"`
		Received int64 `db:"received"`
		Records  int64 `db:"records"`
	}{}
	if err := h.db.Get(&row, query, args...); err != nil {
		return t, err
	}

	var fares []string
	fareQuery := fmt.Sprintf(`SELECT transporter_fare FROM %s WHERE %s`, table, scope)
	if err := h.db.Select(&fares, fareQuery, args...); err != nil {
		return t, err
	}
	total := decimal.Zero
	for _, f := range fares {
		d, err := decimal.NewFromString(strings.TrimSpace(f))
		if err != nil {
			continue
		}
		total = total.Add(d)
	}

	t.Invoices = row.Invoices
	t.Supplied = row.Supplied
	t.Received = row.Received
	t.RecordCount = row.Records
	t.FareTotal = total
	return t, nil
}

func (h *Handler) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	year, err := fiscal.Resolve(h.db, strings.TrimSpace(r.URL.Query().Get("financialYearId")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	scope, args := fiscal.ScopeClause(year)

	sales, err := h.tableSummary(fiscal.TableSales, scope, args)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to aggregate sales")
		return
	}
	purchases, err := h.tableSummary(fiscal.TablePurchases, scope, args)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to aggregate purchases")
		return
	}

	var accounts, products int64
	if err := h.db.Get(&accounts, `SELECT COUNT(*) FROM accounts`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to count accounts")
		return
	}
	if err := h.db.Get(&products, `SELECT COUNT(*) FROM products`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to count products")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"financial_year_id": year.ID,
		"sales":             sales,
		"purchases":         purchases,
		"accounts":          accounts,
		"products":          products,
	})
}

type customerTotal struct {
	AccountName string `db:"account_name" json:"accountName"`
	Supplied    int64  `db:"supplied" json:"supplied"`
	Received    int64  `db:"received" json:"received"`
	Invoices    int64  `db:"invoices" json:"invoices"`
}

func (h *Handler) topCustomers(w http.ResponseWriter, r *http.Request) {
	year, err := fiscal.Resolve(h.db, strings.TrimSpace(r.URL.Query().Get("financialYearId")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	scope, args := fiscal.ScopeClause(year)
	args = append(args, limit)

	rows := []customerTotal{}
	query := fmt.Sprintf(`SELECT account_name,
        COALESCE(SUM(supply_qty), 0) AS supplied,
        COALESCE(SUM(received_qty), 0) AS received,
        COUNT(DISTINCT invoice_no) AS invoices
        FROM sales WHERE %s
        GROUP BY account_name ORDER BY supplied DESC, account_name LIMIT ?`, scope)
	if err := h.db.Select(&rows, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to rank customers")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

type productTotal struct {
	ProductName string `db:"product_name" json:"productName"`
	Supplied    int64  `db:"supplied" json:"supplied"`
	Received    int64  `db:"received" json:"received"`
}

func (h *Handler) productSales(w http.ResponseWriter, r *http.Request) {
	year, err := fiscal.Resolve(h.db, strings.TrimSpace(r.URL.Query().Get("financialYearId")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	scope, args := fiscal.ScopeClause(year)

	rows := []productTotal{}
	query := fmt.Sprintf(`SELECT product_name,
        COALESCE(SUM(supply_qty), 0) AS supplied,
        COALESCE(SUM(received_qty), 0) AS received
        FROM sales WHERE %s
        GROUP BY product_name ORDER BY product_name`, scope)
	if err := h.db.Select(&rows, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to aggregate product sales")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

type consumptionLine struct {
	ProductName string          `json:"productName"`
	Supplied    int64           `json:"supplied"`
	Received    int64           `json:"received"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// consumptionReport prices a customer's year consumption using their
// configured product rates. Products without a rate price at zero.
func (h *Handler) consumptionReport(w http.ResponseWriter, r *http.Request) {
	customer := firstQueryValue(r, "customer_name", "name", "accountName")
	if customer == "" {
		respondError(w, http.StatusBadRequest, "customer_name is required")
		return
	}
	year, err := fiscal.Resolve(h.db, strings.TrimSpace(r.URL.Query().Get("financialYearId")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sales, err := ledgerEntries(h.db, fiscal.TableSales, year, "", customer)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sales")
		return
	}

	var rateRows []struct {
		ProductName string `db:"product_name"`
		Rate        string `db:"rate"`
	}
	if err := h.db.Select(&rateRows, `SELECT product_name, rate FROM customer_rates WHERE customer_name = ? COLLATE NOCASE`, customer); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load rates")
		return
	}
	rates := make(map[string]decimal.Decimal, len(rateRows))
	for _, row := range rateRows {
		d, err := decimal.NewFromString(strings.TrimSpace(row.Rate))
		if err != nil {
			continue
		}
		rates[strings.ToLower(row.ProductName)] = d
	}

	total := decimal.Zero
	lines := []consumptionLine{}
	for _, n := range ledger.CustomerStock(sales) {
		rate := rates[strings.ToLower(n.ProductName)]
		amount := rate.Mul(decimal.NewFromInt(n.Supplied))
		total = total.Add(amount)
		lines = append(lines, consumptionLine{
			ProductName: n.ProductName,
			Supplied:    n.Supplied,
			Received:    n.Received,
			Rate:        rate,
			Amount:      amount,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"customer_name":     customer,
		"financial_year_id": year.ID,
		"lines":             lines,
		"total":             total,
	})
}
