package domain

// StockSummary is the derived per-product position reported by
// /api/stock/summary. Never persisted; recomputed from invoice rows.
type StockSummary struct {
	ProductName    string `json:"productName"`
	OpeningFull    int64  `json:"openingFull"`
	OpeningEmpty   int64  `json:"openingEmpty"`
	FilledReceived int64  `json:"filledReceived"`
	FilledSupplied int64  `json:"filledSupplied"`
	EmptyReceived  int64  `json:"emptyReceived"`
	EmptySupplied  int64  `json:"emptySupplied"`
	FilledStock    int64  `json:"filledStock"`
	EmptyStock     int64  `json:"emptyStock"`
}

// CustomerStock is the signed per-product cylinder balance a customer holds.
// Positive net means unreturned cylinders with the customer.
type CustomerStock struct {
	CustomerName string `json:"customer_name"`
	ProductName  string `json:"productName"`
	Supplied     int64  `json:"supplied"`
	Received     int64  `json:"received"`
	Net          int64  `json:"net"`
}
