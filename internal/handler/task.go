package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/rotation"
	"github.com/dukerupert/chorewheel/internal/websocket"
)

type TaskHandler struct {
	base
	svc *rotation.Service
}

func NewTaskHandler(svc *rotation.Service, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{base: base{hub: hub, logger: logger}, svc: svc}
}

type createTaskRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	IntervalDays int    `json:"interval_days" validate:"required,min=1,max=3650"`
	FirstDue     string `json:"first_due" validate:"ddmmyyyy"`
}

type updateTaskRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	IntervalDays int    `json:"interval_days" validate:"required,min=1,max=3650"`
}

type executeRequest struct {
	ResidentID int64  `json:"resident_id" validate:"required,min=1"`
	Date       string `json:"date" validate:"required,ddmmyyyy"`
}

type reassignRequest struct {
	ResidentID int64 `json:"resident_id" validate:"required,min=1"`
}

func ownerAudience(t model.Task) []int64 {
	var ids []int64
	if t.ResponsibleID != nil {
		ids = append(ids, *t.ResponsibleID)
	}
	return ids
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"), "date")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	views, err := h.svc.ListTasks(r.Context(), date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	firstDue, _ := parseDate(req.FirstDue, "first_due")

	view, err := h.svc.CreateTask(r.Context(), req.Name, req.IntervalDays, firstDue)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "created", view.ID, nil))
	writeJSON(w, http.StatusCreated, view)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	view, err := h.svc.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.svc.UpdateTask(r.Context(), id, req.Name, req.IntervalDays)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil).For(ownerAudience(*task)...))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.svc.DeleteTask(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req executeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, _ := parseDate(req.Date, "date")

	res, err := h.svc.ExecuteTask(r.Context(), id, req.ResidentID, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if !res.Duplicate {
		audience := append([]int64{req.ResidentID}, ownerAudience(res.Task)...)
		h.broadcast(websocket.NewMessage("task", "executed", id, map[string]any{
			"by":             req.ResidentID,
			"date":           res.Task.LastExecutionDate,
			"next_due":       res.Task.NextDueDate,
			"new_owner_name": res.NewOwnerName,
		}).For(audience...))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req reassignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	view, err := h.svc.Reassign(r.Context(), id, req.ResidentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "reassigned", id, map[string]any{
		"owner_name": view.OwnerName,
	}).For(req.ResidentID))
	writeJSON(w, http.StatusOK, view)
}

func (h *TaskHandler) TogglePause(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	task, err := h.svc.TogglePause(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	action := "resumed"
	if task.Paused {
		action = "paused"
	}
	h.broadcast(websocket.NewMessage("task", action, id, nil).For(ownerAudience(*task)...))
	writeJSON(w, http.StatusOK, task)
}
