package domain

import "github.com/shopspring/decimal"

// CustomerRate prices one product for one customer. Upsertable.
type CustomerRate struct {
	CustomerName string          `db:"customer_name" json:"customer_name"`
	ProductName  string          `db:"product_name" json:"product_name"`
	Rate         decimal.Decimal `db:"rate" json:"rate"`
	UpdatedAt    string          `db:"updated_at" json:"updated_at,omitempty"`
}
