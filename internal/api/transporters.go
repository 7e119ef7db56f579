package api

import (
	"net/http"
	"strings"

	"gastrade/m/domain"
)

type transporterRequest struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Address string `json:"address"`
	Details string `json:"details"`
}

func (h *Handler) listTransporters(w http.ResponseWriter, r *http.Request) {
	transporters := []domain.Transporter{}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	var err error
	if name == "" {
		err = h.db.Select(&transporters, `SELECT id, name, mobile, address, details, created_at FROM transporters ORDER BY name`)
	} else {
		err = h.db.Select(&transporters, `SELECT id, name, mobile, address, details, created_at FROM transporters WHERE name LIKE ? ORDER BY name`, "%"+name+"%")
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list transporters")
		return
	}
	respondJSON(w, http.StatusOK, transporters)
}

func (h *Handler) createTransporter(w http.ResponseWriter, r *http.Request) {
	var req transporterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	taken, err := h.nameTaken("transporters", req.Name, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to validate name")
		return
	}
	if taken {
		respondError(w, http.StatusConflict, "a transporter with this name already exists")
		return
	}
	res, err := h.db.Exec(`INSERT INTO transporters (name, mobile, address, details) VALUES (?, ?, ?, ?)`,
		req.Name, req.Mobile, req.Address, req.Details)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create transporter")
		return
	}
	id, _ := res.LastInsertId()
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) updateTransporter(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transporter id")
		return
	}
	var req transporterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	taken, err := h.nameTaken("transporters", req.Name, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to validate name")
		return
	}
	if taken {
		respondError(w, http.StatusConflict, "a transporter with this name already exists")
		return
	}
	res, err := h.db.Exec(`UPDATE transporters SET name = ?, mobile = ?, address = ?, details = ? WHERE id = ?`,
		req.Name, req.Mobile, req.Address, req.Details, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update transporter")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "transporter not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteTransporter(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transporter id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM transporters WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete transporter")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "transporter not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
