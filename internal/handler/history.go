package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorewheel/internal/rotation"
)

type HistoryHandler struct {
	svc    *rotation.Service
	logger *slog.Logger
}

func NewHistoryHandler(svc *rotation.Service, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{svc: svc, logger: logger}
}

func (h *HistoryHandler) Task(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	records, err := h.svc.CollectHistory(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Recent groups the last seven active days, optionally for ?resident_id=.
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	var residentID *int64
	if raw := r.URL.Query().Get("resident_id"); raw != "" {
		id, err := parseID(raw, "resident_id")
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		residentID = &id
	}
	days, err := h.svc.Last7Days(r.Context(), residentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}
