package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"gastrade/m/domain"
	"gastrade/m/internal/fiscal"
	"gastrade/m/internal/ledger"
)

// ledgerEntries loads the year-scoped invoice rows of one table as ledger
// entries. Each stored row is one product line, so the flat entry shape is
// enough; the ledger package handles nested shapes only at the API boundary.
func ledgerEntries(q sqlx.Queryer, table string, year domain.FinancialYear, product, account string) ([]ledger.Entry, error) {
	scope, args := fiscal.ScopeClause(year)
	clauses := []string{scope}
	if product != "" {
		clauses = append(clauses, "product_name = ? COLLATE NOCASE")
		args = append(args, product)
	}
	if account != "" {
		clauses = append(clauses, "account_name = ? COLLATE NOCASE")
		args = append(args, account)
	}
	query := fmt.Sprintf(`SELECT invoice_no, date, account_name, product_name, supply_qty, received_qty
        FROM %s WHERE %s ORDER BY date, id`, table, strings.Join(clauses, " AND "))

	var rows []struct {
		InvoiceNo   string `db:"invoice_no"`
		Date        string `db:"date"`
		AccountName string `db:"account_name"`
		ProductName string `db:"product_name"`
		SupplyQty   int64  `db:"supply_qty"`
		ReceivedQty int64  `db:"received_qty"`
	}
	if err := sqlx.Select(q, &rows, query, args...); err != nil {
		return nil, err
	}

	entries := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, ledger.Entry{
			Line: ledger.Line{
				ProductName: row.ProductName,
				SupplyQty:   ledger.Qty(row.SupplyQty),
				ReceivedQty: ledger.Qty(row.ReceivedQty),
			},
			InvoiceNo:   row.InvoiceNo,
			Date:        row.Date,
			AccountName: row.AccountName,
		})
	}
	return entries, nil
}

// openingFor resolves a product's opening stock within a year: the year-end
// snapshot wins, the product master's own opening columns are the fallback
// for the first configured year.
func openingFor(q sqlx.Queryer, year domain.FinancialYear, product domain.Product) (ledger.Opening, error) {
	var snap domain.OpeningStock
	err := sqlx.Get(q, &snap,
		`SELECT financial_year_id, product_name, full_stock, empty_stock FROM opening_stocks
         WHERE financial_year_id = ? AND product_name = ? COLLATE NOCASE`,
		year.ID, product.Name)
	if err == nil {
		return ledger.Opening{Full: snap.FullStock, Empty: snap.EmptyStock}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return ledger.Opening{}, err
	}
	return ledger.Opening{Full: product.FullStock, Empty: product.EmptyStock}, nil
}

func (h *Handler) stockSummary(w http.ResponseWriter, r *http.Request) {
	year, err := fiscal.Resolve(h.db, strings.TrimSpace(r.URL.Query().Get("financialYearId")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	products := []domain.Product{}
	if name := strings.TrimSpace(r.URL.Query().Get("productName")); name != "" {
		err = h.db.Select(&products, `SELECT id, name, description, full_stock, empty_stock, created_at FROM products WHERE name = ? COLLATE NOCASE`, name)
	} else {
		err = h.db.Select(&products, `SELECT id, name, description, full_stock, empty_stock, created_at FROM products ORDER BY name`)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load products")
		return
	}

	purchases, err := ledgerEntries(h.db, fiscal.TablePurchases, year, "", "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load purchases")
		return
	}
	sales, err := ledgerEntries(h.db, fiscal.TableSales, year, "", "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sales")
		return
	}

	summary := make([]domain.StockSummary, 0, len(products))
	for _, p := range products {
		opening, err := openingFor(h.db, year, p)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to resolve opening stock")
			return
		}
		pos := ledger.ProductLedger(p.Name, opening, purchases, sales)
		summary = append(summary, domain.StockSummary{
			ProductName:    p.Name,
			OpeningFull:    opening.Full,
			OpeningEmpty:   opening.Empty,
			FilledReceived: pos.FilledReceived,
			FilledSupplied: pos.FilledSupplied,
			EmptyReceived:  pos.EmptyReceived,
			EmptySupplied:  pos.EmptySupplied,
			FilledStock:    pos.Filled(),
			EmptyStock:     pos.Empty(),
		})
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) stockMovements(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("productName"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "productName is required")
		return
	}
	year, err := fiscal.Resolve(h.db, strings.TrimSpace(r.URL.Query().Get("financialYearId")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var product domain.Product
	if err := h.db.Get(&product, `SELECT id, name, description, full_stock, empty_stock, created_at FROM products WHERE name = ? COLLATE NOCASE`, name); err != nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	purchases, err := ledgerEntries(h.db, fiscal.TablePurchases, year, product.Name, "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load purchases")
		return
	}
	sales, err := ledgerEntries(h.db, fiscal.TableSales, year, product.Name, "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sales")
		return
	}
	opening, err := openingFor(h.db, year, product)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to resolve opening stock")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"productName":  product.Name,
		"openingFull":  opening.Full,
		"openingEmpty": opening.Empty,
		"movements":    ledger.Movements(product.Name, opening, purchases, sales),
	})
}

func (h *Handler) customerStock(w http.ResponseWriter, r *http.Request) {
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

	nets := ledger.CustomerStock(sales)
	out := make([]domain.CustomerStock, 0, len(nets))
	for _, n := range nets {
		out = append(out, domain.CustomerStock{
			CustomerName: customer,
			ProductName:  n.ProductName,
			Supplied:     n.Supplied,
			Received:     n.Received,
			Net:          n.Balance(),
		})
	}
	respondJSON(w, http.StatusOK, out)
}
