package api

import (
	"net/http"
	"strings"

	"gastrade/m/domain"
)

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FullStock   int64  `json:"fullStock"`
	EmptyStock  int64  `json:"emptyStock"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products := []domain.Product{}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	var err error
	if name == "" {
		err = h.db.Select(&products, `SELECT id, name, description, full_stock, empty_stock, created_at FROM products ORDER BY name`)
	} else {
		err = h.db.Select(&products, `SELECT id, name, description, full_stock, empty_stock, created_at FROM products WHERE name LIKE ? ORDER BY name`, "%"+name+"%")
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.FullStock < 0 || req.EmptyStock < 0 {
		respondError(w, http.StatusBadRequest, "opening stock cannot be negative")
		return
	}
	taken, err := h.nameTaken("products", req.Name, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to validate name")
		return
	}
	if taken {
		respondError(w, http.StatusConflict, "a product with this name already exists")
		return
	}
	res, err := h.db.Exec(`INSERT INTO products (name, description, full_stock, empty_stock) VALUES (?, ?, ?, ?)`,
		req.Name, req.Description, req.FullStock, req.EmptyStock)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create product")
		return
	}
	id, _ := res.LastInsertId()
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.FullStock < 0 || req.EmptyStock < 0 {
		respondError(w, http.StatusBadRequest, "opening stock cannot be negative")
		return
	}
	taken, err := h.nameTaken("products", req.Name, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to validate name")
		return
	}
	if taken {
		respondError(w, http.StatusConflict, "a product with this name already exists")
		return
	}
	res, err := h.db.Exec(`UPDATE products SET name = ?, description = ?, full_stock = ?, empty_stock = ? WHERE id = ?`,
		req.Name, req.Description, req.FullStock, req.EmptyStock, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update product")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
