package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"gastrade/m/internal/backup"
)

func (h *Handler) downloadBackup(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	snapshot, err := backup.Dump(h.db)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create backup")
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="gastrade-backup-%s.json"`, snapshot.ID[:8]))
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) restoreBackup(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var snapshot backup.Snapshot
	if err := decodeJSON(r, &snapshot); err != nil {
		respondError(w, http.StatusBadRequest, "invalid backup document")
		return
	}
	if err := backup.Restore(h.db, &snapshot); err != nil {
		h.log.Error("restore failed", zap.Error(err))
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Info("database restored from snapshot", zap.String("snapshot_id", snapshot.ID))
	respondJSON(w, http.StatusOK, map[string]string{"status": "restored", "snapshot_id": snapshot.ID})
}
