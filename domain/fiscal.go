package domain

// FinancialYear is a contiguous April–March accounting window. Exactly one
// row has is_current set; invoice numbering and stock reports are partitioned
// by its ID.
type FinancialYear struct {
	ID        string `db:"id" json:"id"`
	Label     string `db:"label" json:"label"`
	StartDate string `db:"start_date" json:"startDate"`
	EndDate   string `db:"end_date" json:"endDate"`
	IsCurrent bool   `db:"is_current" json:"isCurrent"`
	Closed    bool   `db:"closed" json:"closed"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}

// OpeningStock is the per-year snapshot written by year-end processing.
type OpeningStock struct {
	FinancialYearID string `db:"financial_year_id" json:"financial_year_id"`
	ProductName     string `db:"product_name" json:"productName"`
	FullStock       int64  `db:"full_stock" json:"fullStock"`
	EmptyStock      int64  `db:"empty_stock" json:"emptyStock"`
}
