package rotation

import (
	"github.com/dukerupert/chorewheel/internal/model"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusDue     Status = "due"
	StatusPaused  Status = "paused"
	StatusNoOwner Status = "no_owner"
)

// TaskView is a task with its status computed for one calendar day.
type TaskView struct {
	model.Task
	Status    Status `json:"status"`
	OwnerName string `json:"owner_name"`
	Holiday   bool   `json:"holiday"`
}

// ComputeStatus derives a task's state on today from its stored fields.
// holiday reports whether the task has an exception for today.
func ComputeStatus(t model.Task, today model.Date, holiday bool) Status {
	if t.Paused {
		return StatusPaused
	}
	if t.ResponsibleID == nil || t.MalformedDate {
		return StatusNoOwner
	}
	if !t.NextDueDate.After(today) && !holiday {
		return StatusDue
	}
	return StatusActive
}

// IsDue is ComputeStatus(...) == StatusDue.
func IsDue(t model.Task, today model.Date, holiday bool) bool {
	return ComputeStatus(t, today, holiday) == StatusDue
}
