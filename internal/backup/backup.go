// Package backup snapshots the whole database as a versioned JSON document
// and restores it wholesale.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gastrade/m/domain"
)

// Version guards restores against incompatible snapshot layouts.
const Version = 1

// Snapshot is the full portable state of the system. Users are included so a
// restore brings back logins; password hashes travel as-is.
type Snapshot struct {
	ID             string                `json:"id"`
	Version        int                   `json:"version"`
	CreatedAt      string                `json:"created_at"`
	Accounts       []domain.Account      `json:"accounts"`
	Products       []domain.Product      `json:"products"`
	Transporters   []domain.Transporter  `json:"transporters"`
	FinancialYears []domain.FinancialYear `json:"financial_years"`
	OpeningStocks  []domain.OpeningStock `json:"opening_stocks"`
	Sales          []domain.InvoiceRow   `json:"sales"`
	Purchases      []domain.InvoiceRow   `json:"purchases"`
	CustomerRates  []domain.CustomerRate `json:"customer_rates"`
	Users          []domain.User         `json:"users"`
}

const invoiceColumns = `id, invoice_no, date, account_name, ship_to_address, transporter_name,
    transporter_fare, container, payment_option, remark,
    COALESCE(financial_year_id, '') AS financial_year_id, product_name, supply_qty, received_qty, created_at`

// Dump reads every table into a Snapshot.
func Dump(db *sqlx.DB) (*Snapshot, error) {
	s := &Snapshot{
		ID:        uuid.NewString(),
		Version:   Version,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	steps := []struct {
		dest  any
		query string
	}{
		{&s.Accounts, `SELECT id, name, address, mobile, email, created_at FROM accounts ORDER BY id`},
		{&s.Products, `SELECT id, name, description, full_stock, empty_stock, created_at FROM products ORDER BY id`},
		{&s.Transporters, `SELECT id, name, mobile, address, details, created_at FROM transporters ORDER BY id`},
		{&s.FinancialYears, `SELECT id, label, start_date, end_date, is_current, closed, created_at FROM financial_years ORDER BY start_date`},
		{&s.OpeningStocks, `SELECT financial_year_id, product_name, full_stock, empty_stock FROM opening_stocks ORDER BY financial_year_id, product_name`},
		{&s.Sales, `SELECT ` + invoiceColumns + ` FROM sales ORDER BY id`},
		{&s.Purchases, `SELECT ` + invoiceColumns + ` FROM purchases ORDER BY id`},
		{&s.CustomerRates, `SELECT customer_name, product_name, rate, updated_at FROM customer_rates ORDER BY customer_name, product_name`},
		{&s.Users, `SELECT id, username, email, password, role, created_at FROM users ORDER BY id`},
	}
	for _, step := range steps {
		if err := db.Select(step.dest, step.query); err != nil {
			return nil, fmt.Errorf("backup query failed: %w", err)
		}
	}
	return s, nil
}

// Restore wipes the database and reloads it from the snapshot in one
// transaction. A failed restore leaves the previous state intact.
func Restore(db *sqlx.DB, s *Snapshot) error {
	if s.Version != Version {
		return fmt.Errorf("unsupported snapshot version %d (want %d)", s.Version, Version)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start restore: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"customer_rates", "sales", "purchases", "opening_stocks",
		"financial_years", "transporters", "products", "accounts", "users",
	} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, a := range s.Accounts {
		if _, err := tx.Exec(`INSERT INTO accounts (id, name, address, mobile, email) VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Address, a.Mobile, a.Email); err != nil {
			return fmt.Errorf("failed to restore account %q: %w", a.Name, err)
		}
	}
	for _, p := range s.Products {
		if _, err := tx.Exec(`INSERT INTO products (id, name, description, full_stock, empty_stock) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.FullStock, p.EmptyStock); err != nil {
			return fmt.Errorf("failed to restore product %q: %w", p.Name, err)
		}
	}
	for _, t := range s.Transporters {
		if _, err := tx.Exec(`INSERT INTO transporters (id, name, mobile, address, details) VALUES (?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.Mobile, t.Address, t.Details); err != nil {
			return fmt.Errorf("failed to restore transporter %q: %w", t.Name, err)
		}
	}
	for _, y := range s.FinancialYears {
		if _, err := tx.Exec(`INSERT INTO financial_years (id, label, start_date, end_date, is_current, closed) VALUES (?, ?, ?, ?, ?, ?)`,
			y.ID, y.Label, y.StartDate, y.EndDate, y.IsCurrent, y.Closed); err != nil {
			return fmt.Errorf("failed to restore financial year %q: %w", y.ID, err)
		}
	}
	for _, o := range s.OpeningStocks {
		if _, err := tx.Exec(`INSERT INTO opening_stocks (financial_year_id, product_name, full_stock, empty_stock) VALUES (?, ?, ?, ?)`,
			o.FinancialYearID, o.ProductName, o.FullStock, o.EmptyStock); err != nil {
			return fmt.Errorf("failed to restore opening stock: %w", err)
		}
	}
	for _, table := range []string{"sales", "purchases"} {
		rows := s.Sales
		if table == "purchases" {
			rows = s.Purchases
		}
		query := fmt.Sprintf(`INSERT INTO %s
            (id, invoice_no, date, account_name, ship_to_address, transporter_name, transporter_fare,
             container, payment_option, remark, financial_year_id, product_name, supply_qty, received_qty)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
		for _, row := range rows {
			if _, err := tx.Exec(query,
				row.ID, row.InvoiceNo, row.Date, row.AccountName, row.ShipToAddress,
				row.TransporterName, row.TransporterFare.String(), row.Container,
				row.PaymentOption, row.Remark, row.FinancialYearID, row.ProductName,
				row.SupplyQty, row.ReceivedQty); err != nil {
				return fmt.Errorf("failed to restore %s invoice %s: %w", table, row.InvoiceNo, err)
			}
		}
	}
	for _, cr := range s.CustomerRates {
		if _, err := tx.Exec(`INSERT INTO customer_rates (customer_name, product_name, rate) VALUES (?, ?, ?)`,
			cr.CustomerName, cr.ProductName, cr.Rate.String()); err != nil {
			return fmt.Errorf("failed to restore rate: %w", err)
		}
	}
	for _, u := range s.Users {
		if _, err := tx.Exec(`INSERT INTO users (id, username, email, password, role) VALUES (?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.Email, u.Password, u.Role); err != nil {
			return fmt.Errorf("failed to restore user %q: %w", u.Email, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to finalize restore: %w", err)
	}
	return nil
}

// WriteFile dumps the database to <dir>/gastrade-<timestamp>-<id>.json.
func WriteFile(db *sqlx.DB, dir string) (string, error) {
	s, err := Dump(db)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}
	name := fmt.Sprintf("gastrade-%s-%s.json", time.Now().UTC().Format("20060102T150405Z"), s.ID[:8])
	path := filepath.Join(dir, name)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}
