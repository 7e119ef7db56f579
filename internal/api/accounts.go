package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gastrade/m/domain"
)

// nameTaken reports whether another row in the master table already uses the
// name, case-insensitively. excludeID skips the row being edited.
func (h *Handler) nameTaken(table, name string, excludeID int64) (bool, error) {
	switch table {
	case "accounts", "products", "transporters":
	default:
		return false, fmt.Errorf("name check: unknown table %q", table)
	}
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE name = ? COLLATE NOCASE AND id != ?)`, table)
	if err := h.db.Get(&exists, query, strings.TrimSpace(name), excludeID); err != nil {
		return false, err
	}
	return exists, nil
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type accountRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := []domain.Account{}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	var err error
	if name == "" {
		err = h.db.Select(&accounts, `SELECT id, name, address, mobile, email, created_at FROM accounts ORDER BY name`)
	} else {
		err = h.db.Select(&accounts, `SELECT id, name, address, mobile, email, created_at FROM accounts WHERE name LIKE ? ORDER BY name`, "%"+name+"%")
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list accounts")
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	taken, err := h.nameTaken("accounts", req.Name, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to validate name")
		return
	}
	if taken {
		respondError(w, http.StatusConflict, "an account with this name already exists")
		return
	}
	res, err := h.db.Exec(`INSERT INTO accounts (name, address, mobile, email) VALUES (?, ?, ?, ?)`,
		req.Name, req.Address, req.Mobile, req.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create account")
		return
	}
	id, _ := res.LastInsertId()
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	taken, err := h.nameTaken("accounts", req.Name, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to validate name")
		return
	}
	if taken {
		respondError(w, http.StatusConflict, "an account with this name already exists")
		return
	}
	res, err := h.db.Exec(`UPDATE accounts SET name = ?, address = ?, mobile = ?, email = ? WHERE id = ?`,
		req.Name, req.Address, req.Mobile, req.Email, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update account")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete account")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
