package domain

import "github.com/shopspring/decimal"

// InvoiceRow is one product line of a sale or purchase invoice. A
// multi-product invoice is stored as several rows sharing one invoice_no;
// only the first row carries the transporter fare so fare totals are never
// double counted.
type InvoiceRow struct {
	ID              int64           `db:"id" json:"id"`
	InvoiceNo       string          `db:"invoice_no" json:"invoiceNo"`
	Date            string          `db:"date" json:"date"`
	AccountName     string          `db:"account_name" json:"accountName"`
	ShipToAddress   string          `db:"ship_to_address" json:"shipToAddress"`
	TransporterName string          `db:"transporter_name" json:"transporterName"`
	TransporterFare decimal.Decimal `db:"transporter_fare" json:"transporterFare"`
	Container       string          `db:"container" json:"container"`
	PaymentOption   string          `db:"payment_option" json:"paymentOption"`
	Remark          string          `db:"remark" json:"remark"`
	FinancialYearID string          `db:"financial_year_id" json:"financial_year_id"`
	ProductName     string          `db:"product_name" json:"productName"`
	SupplyQty       int64           `db:"supply_qty" json:"supplyQty"`
	ReceivedQty     int64           `db:"received_qty" json:"receivedQty"`
	CreatedAt       string          `db:"created_at" json:"created_at,omitempty"`
}
