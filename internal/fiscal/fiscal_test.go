package fiscal

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"gastrade/m/domain"
	"gastrade/m/internal/migrations"
)

var fy2024 = domain.FinancialYear{
	ID:        "FY2024-2025",
	Label:     "FY2024-2025",
	StartDate: "2024-04-01",
	EndDate:   "2025-03-31",
}

func TestContainsInclusiveBounds(t *testing.T) {
	cases := []struct {
		date string
		want bool
	}{
		{"2024-04-01", true},
		{"2025-03-31", true},
		{"2024-03-31", false},
		{"2025-04-01", false},
		{"2024-10-15", true},
		{"not-a-date", false},
		{"", false},
	}
	for _, c := range cases {
		if got := Contains(fy2024, c.date); got != c.want {
			t.Errorf("Contains(%q) = %v, want %v", c.date, got, c.want)
		}
	}
}

func TestMemberTagTakesPrecedenceOverDate(t *testing.T) {
	// Tagged with another year: excluded even though the date fits.
	if Member(fy2024, "FY2023-2024", "2024-06-01") {
		t.Error("record tagged FY2023-2024 must not be a member of FY2024-2025")
	}
	// Tagged with this year: included even though the date does not fit.
	if !Member(fy2024, "FY2024-2025", "2020-01-01") {
		t.Error("record tagged FY2024-2025 must be a member regardless of date")
	}
	// Untagged: date fallback.
	if !Member(fy2024, "", "2024-06-01") {
		t.Error("untagged in-range record must be a member")
	}
	if Member(fy2024, "", "2023-06-01") {
		t.Error("untagged out-of-range record must not be a member")
	}
}

func TestFormatInvoiceNo(t *testing.T) {
	cases := map[int64]string{1: "0001", 10: "0010", 999: "0999", 12345: "12345"}
	for n, want := range cases {
		if got := FormatInvoiceNo(n); got != want {
			t.Errorf("FormatInvoiceNo(%d) = %q, want %q", n, got, want)
		}
	}
}

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	migrations.Run(db)
	return db
}

func TestNextInvoiceNumberEmptyPartition(t *testing.T) {
	db := testDB(t)
	got, err := NextInvoiceNumber(db, TableSales, "Sharma Traders", "FY2024-2025")
	if err != nil {
		t.Fatalf("NextInvoiceNumber failed: %v", err)
	}
	if got != "0001" {
		t.Errorf("next invoice for empty year = %q, want 0001", got)
	}
}

func TestNextInvoiceNumberIncrementsWithinPartition(t *testing.T) {
	db := testDB(t)
	for i := 1; i <= 9; i++ {
		_, err := db.Exec(`INSERT INTO sales (invoice_no, date, account_name, product_name, supply_qty, received_qty, financial_year_id)
            VALUES (?, '2024-05-01', 'Sharma Traders', 'LPG', 1, 0, 'FY2024-2025')`, FormatInvoiceNo(int64(i)))
		if err != nil {
			t.Fatalf("failed to insert sale: %v", err)
		}
	}
	// Another account and another year must not influence the sequence.
	if _, err := db.Exec(`INSERT INTO sales (invoice_no, date, account_name, product_name, supply_qty, received_qty, financial_year_id)
        VALUES ('0500', '2024-05-01', 'Verma Gas', 'LPG', 1, 0, 'FY2024-2025')`); err != nil {
		t.Fatalf("failed to insert sale: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO sales (invoice_no, date, account_name, product_name, supply_qty, received_qty, financial_year_id)
        VALUES ('0900', '2023-05-01', 'Sharma Traders', 'LPG', 1, 0, 'FY2023-2024')`); err != nil {
		t.Fatalf("failed to insert sale: %v", err)
	}

	got, err := NextInvoiceNumber(db, TableSales, "Sharma Traders", "FY2024-2025")
	if err != nil {
		t.Fatalf("NextInvoiceNumber failed: %v", err)
	}
	if got != "0010" {
		t.Errorf("next invoice after 0001..0009 = %q, want 0010", got)
	}
}

func TestNextInvoiceNumberRejectsUnknownTable(t *testing.T) {
	db := testDB(t)
	_, err := NextInvoiceNumber(db, "users; DROP TABLE users", "x", "y")
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("err = %v, want ErrUnknownTable", err)
	}
}

func TestCurrentAndResolve(t *testing.T) {
	db := testDB(t)
	if _, err := Current(db); !errors.Is(err, ErrNoCurrentYear) {
		t.Errorf("Current on empty table = %v, want ErrNoCurrentYear", err)
	}

	if _, err := db.Exec(`INSERT INTO financial_years (id, label, start_date, end_date, is_current)
        VALUES ('FY2024-2025', 'FY2024-2025', '2024-04-01', '2025-03-31', 1)`); err != nil {
		t.Fatalf("failed to insert year: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO financial_years (id, label, start_date, end_date, is_current)
        VALUES ('FY2023-2024', 'FY2023-2024', '2023-04-01', '2024-03-31', 0)`); err != nil {
		t.Fatalf("failed to insert year: %v", err)
	}

	y, err := Resolve(db, "")
	if err != nil {
		t.Fatalf("Resolve(current) failed: %v", err)
	}
	if y.ID != "FY2024-2025" || !y.IsCurrent {
		t.Errorf("current year = %+v, want FY2024-2025", y)
	}

	y, err = Resolve(db, "FY2023-2024")
	if err != nil {
		t.Fatalf("Resolve(id) failed: %v", err)
	}
	if y.ID != "FY2023-2024" {
		t.Errorf("resolved year = %+v, want FY2023-2024", y)
	}
}
