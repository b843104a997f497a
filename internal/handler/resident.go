package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorewheel/internal/rotation"
	"github.com/dukerupert/chorewheel/internal/websocket"
)

type ResidentHandler struct {
	base
	svc *rotation.Service
}

func NewResidentHandler(svc *rotation.Service, hub *websocket.Hub, logger *slog.Logger) *ResidentHandler {
	return &ResidentHandler{base: base{hub: hub, logger: logger}, svc: svc}
}

type createResidentRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type reorderRequest struct {
	IDs     []int64 `json:"ids" validate:"required,dive,min=1"`
	Version *int64  `json:"version"`
}

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type tripRequest struct {
	DepartureDate string `json:"departure_date" validate:"required,ddmmyyyy"`
}

type returnRequest struct {
	ReturnDate string `json:"return_date" validate:"required,ddmmyyyy"`
}

func (h *ResidentHandler) rosterChanged(action string, id int64) {
	h.broadcast(websocket.NewMessage("roster", action, id, nil))
}

// List returns the full roster with its version.
func (h *ResidentHandler) List(w http.ResponseWriter, r *http.Request) {
	roster, err := h.svc.Roster(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (h *ResidentHandler) Active(w http.ResponseWriter, r *http.Request) {
	active, err := h.svc.ActiveResidents(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, active)
}

func (h *ResidentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createResidentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	resident, err := h.svc.AddResident(r.Context(), req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.rosterChanged("created", resident.ID)
	writeJSON(w, http.StatusCreated, resident)
}

func (h *ResidentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.svc.RemoveResident(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.rosterChanged("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResidentHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	roster, err := h.svc.Reorder(r.Context(), req.IDs, req.Version)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.rosterChanged("reordered", 0)
	writeJSON(w, http.StatusOK, roster)
}

func (h *ResidentHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	dir, err := rotation.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	roster, err := h.svc.MoveAdjacent(r.Context(), id, dir)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.rosterChanged("reordered", id)
	writeJSON(w, http.StatusOK, roster)
}

// Due lists the resident's due tasks on ?date=, default today.
func (h *ResidentHandler) Due(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, err := parseDate(r.URL.Query().Get("date"), "date")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	due, err := h.svc.DueForResident(r.Context(), id, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, due)
}

func (h *ResidentHandler) StartTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req tripRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	departure, _ := parseDate(req.DepartureDate, "departure_date")

	trip, err := h.svc.StartTrip(r.Context(), id, departure)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewMessage("trip", "started", trip.ID, map[string]any{"resident_id": id}))
	writeJSON(w, http.StatusCreated, trip)
}

func (h *ResidentHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	trips, err := h.svc.ListTrips(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *ResidentHandler) RegisterReturn(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req returnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	returnDate, _ := parseDate(req.ReturnDate, "return_date")

	trip, err := h.svc.RegisterReturn(r.Context(), id, returnDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewMessage("trip", "ended", trip.ID, map[string]any{"resident_id": trip.ResidentID}))
	writeJSON(w, http.StatusOK, trip)
}
