package api

import (
	"net/http"
	"testing"

	"gastrade/m/domain"
)

func TestAccountCRUD(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPost, "/api/accounts", map[string]any{
		"name": "Sharma Traders", "address": "MG Road", "mobile": "9876543210", "email": "sharma@example.com",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create account = %d %s", res.Code, res.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, res, &created)

	res = ts.do(t, http.MethodGet, "/api/accounts?name=sharma", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("list accounts = %d", res.Code)
	}
	var accounts []domain.Account
	decodeBody(t, res, &accounts)
	if len(accounts) != 1 || accounts[0].Name != "Sharma Traders" {
		t.Errorf("accounts = %+v, want Sharma Traders", accounts)
	}

	res = ts.do(t, http.MethodPut, "/api/accounts/1", map[string]any{
		"name": "Sharma Traders", "address": "New Market",
	})
	if res.Code != http.StatusOK {
		t.Errorf("update with own name = %d, want 200", res.Code)
	}

	res = ts.do(t, http.MethodDelete, "/api/accounts/1", nil)
	if res.Code != http.StatusOK {
		t.Errorf("delete account = %d, want 200", res.Code)
	}
	res = ts.do(t, http.MethodDelete, "/api/accounts/1", nil)
	if res.Code != http.StatusNotFound {
		t.Errorf("delete missing account = %d, want 404", res.Code)
	}
}

func TestDuplicateNamesRejectedCaseInsensitive(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct {
		path string
		body map[string]any
		dup  map[string]any
	}{
		{"/api/accounts", map[string]any{"name": "Verma Gas"}, map[string]any{"name": "VERMA GAS"}},
		{"/api/products", map[string]any{"name": "LPG 14.2kg"}, map[string]any{"name": "lpg 14.2KG"}},
		{"/api/transporters", map[string]any{"name": "Speedy Logistics"}, map[string]any{"name": "speedy logistics"}},
	} {
		res := ts.do(t, http.MethodPost, tc.path, tc.body)
		if res.Code != http.StatusCreated {
			t.Fatalf("create %s = %d %s", tc.path, res.Code, res.Body.String())
		}
		res = ts.do(t, http.MethodPost, tc.path, tc.dup)
		if res.Code != http.StatusConflict {
			t.Errorf("duplicate create %s = %d, want 409", tc.path, res.Code)
		}
	}
}

func TestDuplicateCheckExcludesSelfOnEdit(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPost, "/api/products", map[string]any{"name": "Oxygen"})
	if res.Code != http.StatusCreated {
		t.Fatalf("create product = %d", res.Code)
	}
	res = ts.do(t, http.MethodPost, "/api/products", map[string]any{"name": "Nitrogen"})
	if res.Code != http.StatusCreated {
		t.Fatalf("create product = %d", res.Code)
	}

	// Renaming product 2 to product 1's name must fail.
	res = ts.do(t, http.MethodPut, "/api/products/2", map[string]any{"name": "OXYGEN"})
	if res.Code != http.StatusConflict {
		t.Errorf("rename to taken name = %d, want 409", res.Code)
	}
	// Re-saving product 2 under its own name must pass.
	res = ts.do(t, http.MethodPut, "/api/products/2", map[string]any{"name": "Nitrogen", "description": "industrial"})
	if res.Code != http.StatusOK {
		t.Errorf("save under own name = %d, want 200", res.Code)
	}
}

func TestProductRejectsNegativeOpeningStock(t *testing.T) {
	ts := newTestServer(t)
	res := ts.do(t, http.MethodPost, "/api/products", map[string]any{"name": "Argon", "fullStock": -1})
	if res.Code != http.StatusBadRequest {
		t.Errorf("negative opening stock = %d, want 400", res.Code)
	}
}
