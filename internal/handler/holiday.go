package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorewheel/internal/rotation"
	"github.com/dukerupert/chorewheel/internal/websocket"
)

type HolidayHandler struct {
	base
	svc *rotation.Service
}

func NewHolidayHandler(svc *rotation.Service, hub *websocket.Hub, logger *slog.Logger) *HolidayHandler {
	return &HolidayHandler{base: base{hub: hub, logger: logger}, svc: svc}
}

type holidayRequest struct {
	Date string `json:"date" validate:"required,ddmmyyyy"`
}

func (h *HolidayHandler) List(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	holidays, err := h.svc.ListHolidays(r.Context(), taskID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, holidays)
}

func (h *HolidayHandler) Create(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req holidayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, _ := parseDate(req.Date, "date")

	holiday, err := h.svc.AddHoliday(r.Context(), taskID, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewMessage("holiday", "created", holiday.ID, map[string]any{"task_id": taskID}))
	writeJSON(w, http.StatusCreated, holiday)
}

func (h *HolidayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	holiday, err := h.svc.RemoveHoliday(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewMessage("holiday", "deleted", id, map[string]any{"task_id": holiday.TaskID}))
	w.WriteHeader(http.StatusNoContent)
}
