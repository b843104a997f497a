package rotation

import (
	"context"

	"github.com/dukerupert/chorewheel/internal/apperr"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/store"
)

// ExecuteResult is the outcome of ExecuteTask.
type ExecuteResult struct {
	Task         model.Task             `json:"task"`
	NewOwnerName string                 `json:"new_owner_name"`
	Record       *model.ExecutionRecord `json:"record"`
	// Duplicate is true when (task, date) had already been executed and
	// nothing changed.
	Duplicate bool `json:"duplicate"`
}

// ExecuteTask records that residentID did the task on date and hands the
// task to the next resident in rotation. The ledger row, the date fields and
// the new owner are committed together or not at all. Repeating a call for the
// same (task, date) is a successful no-op. A date before the task's last
// execution is rejected.
func (s *Service) ExecuteTask(ctx context.Context, taskID, residentID int64, date model.Date) (*ExecuteResult, error) {
	if date.IsZero() {
		return nil, apperr.Validationf("execution date is required")
	}

	unlock, err := s.lockTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res ExecuteResult
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		t, err := tx.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFoundf("task %d not found", taskID)
		}
		performer, err := tx.Residents.GetByID(ctx, residentID)
		if err != nil {
			return err
		}
		if performer == nil {
			return apperr.NotFoundf("resident %d not found", residentID)
		}

		existing, err := tx.Executions.GetByTaskAndDate(ctx, taskID, date)
		if err != nil {
			return err
		}
		if existing != nil {
			res = ExecuteResult{Task: *t, Record: existing, Duplicate: true}
			res.NewOwnerName, err = ownerName(ctx, tx, t.ResponsibleID)
			return err
		}
		if t.Paused {
			return apperr.Conflictf("task %q is paused", t.Name)
		}
		// The schedule only moves forward from the latest execution.
		if !t.LastExecutionDate.IsZero() && date.Before(t.LastExecutionDate) {
			return apperr.Validationf("execution date %s is before the last execution on %s", date, t.LastExecutionDate)
		}

		record, err := tx.Executions.Create(ctx, taskID, performer.ID, performer.Name, date)
		if err != nil {
			return err
		}

		next, err := nextOwner(ctx, tx, t)
		if err != nil {
			return err
		}
		var nextID *int64
		if next != nil {
			nextID = &next.ID
			res.NewOwnerName = next.Name
		}

		nextDue := date.AddDays(t.IntervalDays)
		if err := tx.Tasks.Advance(ctx, taskID, t.ResponsibleID, date, nextDue, nextID); err != nil {
			return err
		}

		updated, err := tx.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		res.Task = *updated
		res.Record = record
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("execute task", err)
	}

	if res.Duplicate {
		s.logger.Debug("duplicate execution ignored", "task_id", taskID, "date", date.ISO())
	} else {
		s.logger.Info("task executed",
			"task_id", taskID,
			"by", residentID,
			"date", date.ISO(),
			"next_due", res.Task.NextDueDate.ISO(),
			"new_owner", res.NewOwnerName,
		)
	}
	return &res, nil
}

// nextOwner is the ordinal successor of the task's current owner among the
// active residents. The current owner may be traveling; its ordinal still
// anchors the lookup. A task with no owner falls back to InitialOwner.
func nextOwner(ctx context.Context, tx *store.Stores, t *model.Task) (*model.Resident, error) {
	active, err := tx.Residents.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if t.ResponsibleID == nil {
		return InitialOwner(active, t.LastResponsibleID), nil
	}
	current, err := tx.Residents.GetByID(ctx, *t.ResponsibleID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return InitialOwner(active, t.LastResponsibleID), nil
	}
	return Successor(active, current.Ordinal), nil
}

func ownerName(ctx context.Context, tx *store.Stores, id *int64) (string, error) {
	if id == nil {
		return "", nil
	}
	r, err := tx.Residents.GetByID(ctx, *id)
	if err != nil || r == nil {
		return "", err
	}
	return r.Name, nil
}

// Reassign overrides the task's owner. The due date and the ledger are left
// alone. The new owner must be in the active roster.
func (s *Service) Reassign(ctx context.Context, taskID, residentID int64) (*TaskView, error) {
	unlock, err := s.lockTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	today := s.Today()
	var view TaskView
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		t, err := tx.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFoundf("task %d not found", taskID)
		}
		r, err := tx.Residents.GetByID(ctx, residentID)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.NotFoundf("resident %d not found", residentID)
		}
		if r.InTravel {
			return apperr.Validationf("resident %q is traveling and not in the active roster", r.Name)
		}
		if err := tx.Tasks.SetResponsible(ctx, taskID, &r.ID); err != nil {
			return err
		}
		updated, err := tx.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		holiday, err := tx.Holidays.Exists(ctx, taskID, today)
		if err != nil {
			return err
		}
		view = s.view(*updated, today, holiday, map[int64]string{r.ID: r.Name})
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("reassign task", err)
	}
	s.logger.Info("task reassigned", "task_id", taskID, "owner", view.OwnerName)
	return &view, nil
}

// DueForResident lists the tasks owned by residentID that are due on date.
func (s *Service) DueForResident(ctx context.Context, residentID int64, date model.Date) ([]TaskView, error) {
	if date.IsZero() {
		date = s.Today()
	}
	var due []TaskView
	err := s.stores.InTx(ctx, func(tx *store.Stores) error {
		r, err := tx.Residents.GetByID(ctx, residentID)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.NotFoundf("resident %d not found", residentID)
		}
		tasks, err := tx.Tasks.ListByResponsible(ctx, residentID)
		if err != nil {
			return err
		}
		holidays, err := tx.Holidays.TaskIDsOn(ctx, date)
		if err != nil {
			return err
		}
		names := map[int64]string{r.ID: r.Name}
		due = []TaskView{}
		for _, t := range tasks {
			v := s.view(t, date, holidays[t.ID], names)
			if v.Status == StatusDue {
				due = append(due, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("list due tasks", err)
	}
	return due, nil
}

// DueOn lists every due task on date across all residents.
func (s *Service) DueOn(ctx context.Context, date model.Date) ([]TaskView, error) {
	views, err := s.ListTasks(ctx, date)
	if err != nil {
		return nil, err
	}
	due := []TaskView{}
	for _, v := range views {
		if v.Status == StatusDue {
			due = append(due, v)
		}
	}
	return due, nil
}

// UnownedDueOn lists tasks nobody owns whose due date has arrived by date.
// Paused tasks, tasks with a holiday on date and tasks with a malformed
// stored date are left out.
func (s *Service) UnownedDueOn(ctx context.Context, date model.Date) ([]TaskView, error) {
	views, err := s.ListTasks(ctx, date)
	if err != nil {
		return nil, err
	}
	unowned := []TaskView{}
	for _, v := range views {
		if v.Status != StatusNoOwner || v.MalformedDate || v.Holiday {
			continue
		}
		if v.ResponsibleID == nil && !v.NextDueDate.After(date) {
			unowned = append(unowned, v)
		}
	}
	return unowned, nil
}
