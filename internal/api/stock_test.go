package api

import (
	"net/http"
	"testing"

	"gastrade/m/domain"
)

func TestStockSummaryWorkedExample(t *testing.T) {
	ts := newTestServer(t)
	seedAccount(t, ts, "Sharma Traders")
	seedAccount(t, ts, "HP Gas Depot")
	seedProduct(t, ts, "LPG 14.2kg", 10, 5)

	res := ts.do(t, http.MethodPost, "/api/purchases", map[string]any{
		"date": "2024-05-01", "accountName": "HP Gas Depot",
		"productName": "LPG 14.2kg", "supplyQty": 3, "receivedQty": 20,
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create purchase = %d", res.Code)
	}
	res = ts.do(t, http.MethodPost, "/api/sales", map[string]any{
		"date": "2024-05-02", "accountName": "Sharma Traders",
		"productName": "LPG 14.2kg", "supplyQty": 8, "receivedQty": 2,
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create sale = %d", res.Code)
	}

	res = ts.do(t, http.MethodGet, "/api/stock/summary", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("stock summary = %d %s", res.Code, res.Body.String())
	}
	var summary []domain.StockSummary
	decodeBody(t, res, &summary)
	if len(summary) != 1 {
		t.Fatalf("summary rows = %d, want 1", len(summary))
	}
	s := summary[0]
	if s.FilledStock != 22 { // 10 + 20 − 8
		t.Errorf("filled stock = %d, want 22", s.FilledStock)
	}
	if s.EmptyStock != 4 { // 5 + 2 − 3
		t.Errorf("empty stock = %d, want 4", s.EmptyStock)
	}
}

func TestStockMovementsTimeline(t *testing.T) {
	ts := newTestServer(t)
	seedAccount(t, ts, "Sharma Traders")
	seedProduct(t, ts, "LPG 14.2kg", 10, 0)

	res := ts.do(t, http.MethodPost, "/api/sales", map[string]any{
		"date": "2024-05-02", "accountName": "Sharma Traders",
		"productName": "LPG 14.2kg", "supplyQty": 4, "receivedQty": 1,
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create sale = %d", res.Code)
	}

	res = ts.do(t, http.MethodGet, "/api/stock/movements?productName=LPG+14.2kg", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("movements = %d %s", res.Code, res.Body.String())
	}
	var payload struct {
		ProductName  string `json:"productName"`
		OpeningFull  int64  `json:"openingFull"`
		OpeningEmpty int64  `json:"openingEmpty"`
		Movements    []struct {
			Source        string `json:"source"`
			FilledBalance int64  `json:"filledBalance"`
			EmptyBalance  int64  `json:"emptyBalance"`
		} `json:"movements"`
	}
	decodeBody(t, res, &payload)
	if payload.OpeningFull != 10 {
		t.Errorf("opening full = %d, want 10", payload.OpeningFull)
	}
	if len(payload.Movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(payload.Movements))
	}
	m := payload.Movements[0]
	if m.Source != "sale" || m.FilledBalance != 6 || m.EmptyBalance != 1 {
		t.Errorf("movement = %+v, want sale with balances 6/1", m)
	}

	res = ts.do(t, http.MethodGet, "/api/stock/movements", nil)
	if res.Code != http.StatusBadRequest {
		t.Errorf("movements without product = %d, want 400", res.Code)
	}
}

func TestCustomerStockNet(t *testing.T) {
	ts := newTestServer(t)
	seedAccount(t, ts, "Sharma Traders")
	seedProduct(t, ts, "LPG 14.2kg", 0, 0)
	seedProduct(t, ts, "LPG 19kg", 0, 0)

	res := ts.do(t, http.MethodPost, "/api/sales", map[string]any{
		"date": "2024-05-02", "accountName": "Sharma Traders",
		"products": []map[string]any{
			{"productName": "LPG 14.2kg", "supplyQty": 5, "receivedQty": 2},
			{"productName": "LPG 19kg", "supplyQty": 1, "receivedQty": 3},
		},
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create sale = %d", res.Code)
	}
	res = ts.do(t, http.MethodPost, "/api/sales", map[string]any{
		"date": "2024-05-09", "accountName": "Sharma Traders",
		"productName": "LPG 14.2kg", "supplyQty": 3, "receivedQty": 1,
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create sale = %d", res.Code)
	}

	res = ts.do(t, http.MethodGet, "/api/stock/customers?customer_name=Sharma+Traders", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("customer stock = %d %s", res.Code, res.Body.String())
	}
	var nets []domain.CustomerStock
	decodeBody(t, res, &nets)
	if len(nets) != 2 {
		t.Fatalf("net rows = %d, want 2", len(nets))
	}
	if nets[0].ProductName != "LPG 14.2kg" || nets[0].Net != 5 {
		t.Errorf("net[0] = %+v, want LPG 14.2kg net 5", nets[0])
	}
	if nets[1].ProductName != "LPG 19kg" || nets[1].Net != -2 {
		t.Errorf("net[1] = %+v, want LPG 19kg net -2", nets[1])
	}
}
