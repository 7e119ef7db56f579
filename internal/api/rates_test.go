package api

import (
	"net/http"
	"testing"

	"gastrade/m/domain"
)

func TestCustomerRateUpsert(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPut, "/api/customer-rates", map[string]any{
		"customer_name": "Sharma Traders", "product_name": "LPG 14.2kg", "rate": "905.50",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("upsert rate = %d %s", res.Code, res.Body.String())
	}
	// Second write for the same pair overwrites instead of duplicating.
	res = ts.do(t, http.MethodPut, "/api/customer-rates", map[string]any{
		"customer_name": "sharma traders", "product_name": "lpg 14.2KG", "rate": "910",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("second upsert = %d %s", res.Code, res.Body.String())
	}

	res = ts.do(t, http.MethodGet, "/api/customer-rates?customer_name=Sharma+Traders", nil)
	var rates []domain.CustomerRate
	decodeBody(t, res, &rates)
	if len(rates) != 1 {
		t.Fatalf("rates = %d rows, want 1", len(rates))
	}
	if rates[0].Rate.String() != "910" {
		t.Errorf("rate = %s, want 910", rates[0].Rate)
	}

	res = ts.do(t, http.MethodPut, "/api/customer-rates", map[string]any{
		"customer_name": "X", "product_name": "Y", "rate": "-1",
	})
	if res.Code != http.StatusBadRequest {
		t.Errorf("negative rate = %d, want 400", res.Code)
	}
}

func TestCustomerRateBatchIsTransactional(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPost, "/api/customer-rates/batch", []map[string]any{
		{"customer_name": "Sharma Traders", "product_name": "LPG 14.2kg", "rate": "905"},
		{"customer_name": "Sharma Traders", "product_name": "LPG 19kg", "rate": "1210"},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("batch upsert = %d %s", res.Code, res.Body.String())
	}

	res = ts.do(t, http.MethodGet, "/api/customer-rates", nil)
	var rates []domain.CustomerRate
	decodeBody(t, res, &rates)
	if len(rates) != 2 {
		t.Errorf("rates = %d rows, want 2", len(rates))
	}

	// One invalid row rejects the whole batch.
	res = ts.do(t, http.MethodPost, "/api/customer-rates/batch", []map[string]any{
		{"customer_name": "Verma Gas", "product_name": "LPG 14.2kg", "rate": "900"},
		{"customer_name": "", "product_name": "LPG 19kg", "rate": "1200"},
	})
	if res.Code != http.StatusBadRequest {
		t.Errorf("batch with invalid row = %d, want 400", res.Code)
	}
	res = ts.do(t, http.MethodGet, "/api/customer-rates?customer_name=Verma+Gas", nil)
	rates = nil
	decodeBody(t, res, &rates)
	if len(rates) != 0 {
		t.Errorf("rejected batch left %d rows", len(rates))
	}
}

func TestConsumptionReportPricesWithRates(t *testing.T) {
	ts := newTestServer(t)
	seedAccount(t, ts, "Sharma Traders")
	seedProduct(t, ts, "LPG 14.2kg", 0, 0)
	seedProduct(t, ts, "LPG 19kg", 0, 0)

	res := ts.do(t, http.MethodPost, "/api/customer-rates/batch", []map[string]any{
		{"customer_name": "Sharma Traders", "product_name": "LPG 14.2kg", "rate": "900.50"},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("seed rates = %d", res.Code)
	}

	res = ts.do(t, http.MethodPost, "/api/sales", map[string]any{
		"date": "2024-05-02", "accountName": "Sharma Traders",
		"products": []map[string]any{
			{"productName": "LPG 14.2kg", "supplyQty": 4},
			{"productName": "LPG 19kg", "supplyQty": 2},
		},
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create sale = %d", res.Code)
	}

	res = ts.do(t, http.MethodGet, "/api/dashboard/consumption?customer_name=Sharma+Traders", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("consumption = %d %s", res.Code, res.Body.String())
	}
	var payload struct {
		Lines []struct {
			ProductName string `json:"productName"`
			Amount      string `json:"amount"`
		} `json:"lines"`
		Total string `json:"total"`
	}
	decodeBody(t, res, &payload)
	if len(payload.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(payload.Lines))
	}
	if payload.Lines[0].Amount != "3602" { // 4 × 900.50
		t.Errorf("priced amount = %s, want 3602", payload.Lines[0].Amount)
	}
	if payload.Lines[1].Amount != "0" { // no rate configured
		t.Errorf("unrated amount = %s, want 0", payload.Lines[1].Amount)
	}
	if payload.Total != "3602" {
		t.Errorf("total = %s, want 3602", payload.Total)
	}
}

func TestDashboardSummaryAndRankings(t *testing.T) {
	ts := newTestServer(t)
	seedAccount(t, ts, "Sharma Traders")
	seedAccount(t, ts, "Verma Gas")
	seedProduct(t, ts, "LPG 14.2kg", 0, 0)

	for _, sale := range []map[string]any{
		{"date": "2024-05-01", "accountName": "Sharma Traders", "productName": "LPG 14.2kg", "supplyQty": 10, "transporterFare": "100.25"},
		{"date": "2024-05-02", "accountName": "Verma Gas", "productName": "LPG 14.2kg", "supplyQty": 3, "transporterFare": "50"},
	} {
		res := ts.do(t, http.MethodPost, "/api/sales", sale)
		if res.Code != http.StatusCreated {
			t.Fatalf("create sale = %d", res.Code)
		}
	}

	res := ts.do(t, http.MethodGet, "/api/dashboard/summary", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("dashboard summary = %d %s", res.Code, res.Body.String())
	}
	var summary struct {
		Sales struct {
			Invoices  int64  `json:"invoices"`
			Supplied  int64  `json:"supplied"`
			FareTotal string `json:"fareTotal"`
		} `json:"sales"`
		Accounts int64 `json:"accounts"`
	}
	decodeBody(t, res, &summary)
	if summary.Sales.Invoices != 2 || summary.Sales.Supplied != 13 {
		t.Errorf("sales totals = %+v", summary.Sales)
	}
	if summary.Sales.FareTotal != "150.25" {
		t.Errorf("fare total = %s, want 150.25", summary.Sales.FareTotal)
	}
	if summary.Accounts != 2 {
		t.Errorf("accounts = %d, want 2", summary.Accounts)
	}

	res = ts.do(t, http.MethodGet, "/api/dashboard/top-customers?limit=1", nil)
	var top []customerTotal
	decodeBody(t, res, &top)
	if len(top) != 1 || top[0].AccountName != "Sharma Traders" {
		t.Errorf("top customers = %+v, want Sharma Traders first", top)
	}

	res = ts.do(t, http.MethodGet, "/api/dashboard/product-sales", nil)
	var products []productTotal
	decodeBody(t, res, &products)
	if len(products) != 1 || products[0].Supplied != 13 {
		t.Errorf("product sales = %+v", products)
	}
}
