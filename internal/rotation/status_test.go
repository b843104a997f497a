package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/chorewheel/internal/model"
)

func ownedTask(nextDue string) model.Task {
	owner := int64(1)
	return model.Task{ID: 1, Name: "Take out trash", IntervalDays: 7, ResponsibleID: &owner, NextDueDate: model.MustParseISO(nextDue)}
}

func TestComputeStatus(t *testing.T) {
	today := model.MustParseISO("2025-01-10")

	assert.Equal(t, StatusDue, ComputeStatus(ownedTask("2025-01-10"), today, false), "due today")
	assert.Equal(t, StatusDue, ComputeStatus(ownedTask("2025-01-02"), today, false), "overdue is still due")
	assert.Equal(t, StatusActive, ComputeStatus(ownedTask("2025-01-11"), today, false), "future")
	assert.Equal(t, StatusActive, ComputeStatus(ownedTask("2025-01-10"), today, true), "holiday suppresses")
}

func TestComputeStatusPausedWins(t *testing.T) {
	today := model.MustParseISO("2025-01-10")
	task := ownedTask("2025-01-01")
	task.Paused = true
	assert.Equal(t, StatusPaused, ComputeStatus(task, today, false))

	task.ResponsibleID = nil
	assert.Equal(t, StatusPaused, ComputeStatus(task, today, false))
}

func TestComputeStatusNoOwner(t *testing.T) {
	today := model.MustParseISO("2025-01-10")
	task := ownedTask("2025-01-01")
	task.ResponsibleID = nil
	assert.Equal(t, StatusNoOwner, ComputeStatus(task, today, false))

	broken := ownedTask("2025-01-01")
	broken.MalformedDate = true
	assert.Equal(t, StatusNoOwner, ComputeStatus(broken, today, false))
	assert.False(t, IsDue(broken, today, false))
}
