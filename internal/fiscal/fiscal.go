// Package fiscal partitions records into financial years and mints
// per-partition invoice numbers.
package fiscal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gastrade/m/domain"
)

// DateLayout is the wire format for all record and boundary dates.
const DateLayout = "2006-01-02"

var (
	// ErrNoCurrentYear is returned when no financial year is marked current.
	ErrNoCurrentYear = errors.New("no current financial year configured")

	// ErrUnknownTable guards the invoice-number query against arbitrary
	// table names.
	ErrUnknownTable = errors.New("invoice numbering: unknown table")
)

// Contains reports whether date falls inside the year's [start, end]
// inclusive window. Unparseable dates are outside every year.
func Contains(y domain.FinancialYear, date string) bool {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	start, err := time.Parse(DateLayout, y.StartDate)
	if err != nil {
		return false
	}
	end, err := time.Parse(DateLayout, y.EndDate)
	if err != nil {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

// Member decides record-to-year membership: an explicit financial_year_id tag
// takes precedence, the date window is only a fallback for untagged records.
// A record tagged with another year is excluded even when its date falls
// inside this year's range.
func Member(y domain.FinancialYear, recordYearID, date string) bool {
	if recordYearID != "" {
		return recordYearID == y.ID
	}
	return Contains(y, date)
}

// ScopeClause builds the SQL fragment implementing Member for list queries.
func ScopeClause(y domain.FinancialYear) (string, []any) {
	return `(financial_year_id = ? OR (COALESCE(financial_year_id, '') = '' AND date >= ? AND date <= ?))`,
		[]any{y.ID, y.StartDate, y.EndDate}
}

// FormatInvoiceNo zero-pads to four digits ("0001" for the first invoice of
// a partition).
func FormatInvoiceNo(n int64) string {
	return fmt.Sprintf("%04d", n)
}

// Tables that carry invoice numbers.
const (
	TableSales     = "sales"
	TablePurchases = "purchases"
)

// NextInvoiceNumber computes max(invoice_no)+1 for the (account, year)
// partition, zero-padded. Run it inside the same transaction that inserts
// the invoice rows; the single sqlite writer then makes the allocation atomic.
func NextInvoiceNumber(q sqlx.Queryer, table, accountName, yearID string) (string, error) {
	if table != TableSales && table != TablePurchases {
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	var last sql.NullInt64
	query := fmt.Sprintf(
		`SELECT MAX(CAST(invoice_no AS INTEGER)) FROM %s WHERE account_name = ? AND financial_year_id = ?`, table)
	if err := sqlx.Get(q, &last, query, accountName, yearID); err != nil {
		return "", fmt.Errorf("failed to read last invoice number: %w", err)
	}
	return FormatInvoiceNo(last.Int64 + 1), nil
}

// Current fetches the financial year marked current.
func Current(q sqlx.Queryer) (domain.FinancialYear, error) {
	var y domain.FinancialYear
	err := sqlx.Get(q, &y,
		`SELECT id, label, start_date, end_date, is_current, closed, created_at FROM financial_years WHERE is_current = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return y, ErrNoCurrentYear
	}
	if err != nil {
		return y, fmt.Errorf("failed to load current financial year: %w", err)
	}
	return y, nil
}

// ByID fetches one financial year.
func ByID(q sqlx.Queryer, id string) (domain.FinancialYear, error) {
	var y domain.FinancialYear
	err := sqlx.Get(q, &y,
		`SELECT id, label, start_date, end_date, is_current, closed, created_at FROM financial_years WHERE id = ?`, id)
	if err != nil {
		return y, fmt.Errorf("failed to load financial year %s: %w", id, err)
	}
	return y, nil
}

// Resolve picks the year named by id, or the current one when id is empty.
func Resolve(q sqlx.Queryer, id string) (domain.FinancialYear, error) {
	if id == "" {
		return Current(q)
	}
	return ByID(q, id)
}

// NextLabel derives "FY2025-2026" style identifiers from a start date.
func NextLabel(start time.Time) string {
	return fmt.Sprintf("FY%d-%d", start.Year(), start.Year()+1)
}
