package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the trading backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'staff',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS password_resets (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            email TEXT NOT NULL,
            otp_hash TEXT NOT NULL,
            expires_at DATETIME NOT NULL,
            used INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS accounts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE COLLATE NOCASE,
            address TEXT,
            mobile TEXT,
            email TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS products (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE COLLATE NOCASE,
            description TEXT,
            full_stock INTEGER NOT NULL DEFAULT 0,
            empty_stock INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS transporters (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE COLLATE NOCASE,
            mobile TEXT,
            address TEXT,
            details TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS financial_years (
            id TEXT PRIMARY KEY,
            label TEXT NOT NULL,
            start_date TEXT NOT NULL,
            end_date TEXT NOT NULL,
            is_current INTEGER NOT NULL DEFAULT 0,
            closed INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS opening_stocks (
            financial_year_id TEXT NOT NULL,
            product_name TEXT NOT NULL COLLATE NOCASE,
            full_stock INTEGER NOT NULL DEFAULT 0,
            empty_stock INTEGER NOT NULL DEFAULT 0,
            PRIMARY KEY (financial_year_id, product_name),
            FOREIGN KEY (financial_year_id) REFERENCES financial_years(id)
        );`,
		`CREATE TABLE IF NOT EXISTS sales (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_no TEXT NOT NULL,
            date TEXT NOT NULL,
            account_name TEXT NOT NULL COLLATE NOCASE,
            ship_to_address TEXT,
            transporter_name TEXT,
            transporter_fare TEXT NOT NULL DEFAULT '0',
            container TEXT,
            payment_option TEXT,
            remark TEXT,
            financial_year_id TEXT,
            product_name TEXT NOT NULL COLLATE NOCASE,
            supply_qty INTEGER NOT NULL DEFAULT 0,
            received_qty INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_sales_year_account ON sales(financial_year_id, account_name);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_product ON sales(product_name);`,
		`CREATE TABLE IF NOT EXISTS purchases (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_no TEXT NOT NULL,
            date TEXT NOT NULL,
            account_name TEXT NOT NULL COLLATE NOCASE,
            ship_to_address TEXT,
            transporter_name TEXT,
            transporter_fare TEXT NOT NULL DEFAULT '0',
            container TEXT,
            payment_option TEXT,
            remark TEXT,
            financial_year_id TEXT,
            product_name TEXT NOT NULL COLLATE NOCASE,
            supply_qty INTEGER NOT NULL DEFAULT 0,
            received_qty INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_year_account ON purchases(financial_year_id, account_name);`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_product ON purchases(product_name);`,
		`CREATE TABLE IF NOT EXISTS customer_rates (
            customer_name TEXT NOT NULL COLLATE NOCASE,
            product_name TEXT NOT NULL COLLATE NOCASE,
            rate TEXT NOT NULL DEFAULT '0',
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (customer_name, product_name)
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
