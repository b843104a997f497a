package rotation

import (
	"context"
	"strings"

	"github.com/dukerupert/chorewheel/internal/apperr"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/store"
)

func validateTask(name string, intervalDays int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validationf("task name is required")
	}
	if intervalDays < 1 {
		return "", apperr.Validationf("interval_days must be at least 1, got %d", intervalDays)
	}
	return name, nil
}

// CreateTask registers a recurring task. It is first due on firstDue, or
// today when firstDue is zero, and is owned by the first active resident.
func (s *Service) CreateTask(ctx context.Context, name string, intervalDays int, firstDue model.Date) (*TaskView, error) {
	name, err := validateTask(name, intervalDays)
	if err != nil {
		return nil, err
	}
	if firstDue.IsZero() {
		firstDue = s.Today()
	}

	var view TaskView
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		active, err := tx.Residents.ListActive(ctx)
		if err != nil {
			return err
		}
		var ownerID *int64
		names := residentNames(active)
		if owner := InitialOwner(active, nil); owner != nil {
			ownerID = &owner.ID
		}
		t, err := tx.Tasks.Create(ctx, name, intervalDays, firstDue, ownerID)
		if err != nil {
			return err
		}
		view = s.view(*t, s.Today(), false, names)
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("create task", err)
	}
	s.logger.Info("task created", "task_id", view.ID, "name", view.Name, "interval_days", intervalDays, "owner", view.OwnerName)
	return &view, nil
}

// UpdateTask renames a task or changes its interval. A new interval moves
// next_due_date relative to the last execution, if there was one.
func (s *Service) UpdateTask(ctx context.Context, id int64, name string, intervalDays int) (*model.Task, error) {
	name, err := validateTask(name, intervalDays)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockTask(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *model.Task
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		t, err := tx.Tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFoundf("task %d not found", id)
		}
		nextDue := t.NextDueDate
		if !t.LastExecutionDate.IsZero() {
			nextDue = t.LastExecutionDate.AddDays(intervalDays)
		}
		updated, err = tx.Tasks.Update(ctx, id, name, intervalDays, nextDue)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("update task", err)
	}
	return updated, nil
}

func (s *Service) GetTask(ctx context.Context, id int64) (*TaskView, error) {
	today := s.Today()
	var view TaskView
	err := s.stores.InTx(ctx, func(tx *store.Stores) error {
		t, err := tx.Tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFoundf("task %d not found", id)
		}
		holiday, err := tx.Holidays.Exists(ctx, id, today)
		if err != nil {
			return err
		}
		residents, err := tx.Residents.List(ctx)
		if err != nil {
			return err
		}
		view = s.view(*t, today, holiday, residentNames(residents))
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("get task", err)
	}
	return &view, nil
}

// DeleteTask removes a task together with its holidays and history.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	unlock, err := s.lockTask(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		t, err := tx.Tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFoundf("task %d not found", id)
		}
		if err := tx.Holidays.DeleteByTask(ctx, id); err != nil {
			return err
		}
		if err := tx.Executions.DeleteByTask(ctx, id); err != nil {
			return err
		}
		return tx.Tasks.Delete(ctx, id)
	})
	if err != nil {
		return apperr.Storage("delete task", err)
	}
	s.logger.Info("task deleted", "task_id", id)
	return nil
}

// ListTasks returns every task with its status on date.
func (s *Service) ListTasks(ctx context.Context, date model.Date) ([]TaskView, error) {
	if date.IsZero() {
		date = s.Today()
	}
	var views []TaskView
	err := s.stores.InTx(ctx, func(tx *store.Stores) error {
		tasks, err := tx.Tasks.List(ctx)
		if err != nil {
			return err
		}
		residents, err := tx.Residents.List(ctx)
		if err != nil {
			return err
		}
		holidays, err := tx.Holidays.TaskIDsOn(ctx, date)
		if err != nil {
			return err
		}
		names := residentNames(residents)
		views = make([]TaskView, 0, len(tasks))
		for _, t := range tasks {
			views = append(views, s.view(t, date, holidays[t.ID], names))
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("list tasks", err)
	}
	return views, nil
}

// TogglePause flips the paused flag. Owner and next_due_date are untouched,
// so a resumed task whose date has passed is due straight away.
func (s *Service) TogglePause(ctx context.Context, id int64) (*model.Task, error) {
	unlock, err := s.lockTask(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *model.Task
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		t, err := tx.Tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFoundf("task %d not found", id)
		}
		if err := tx.Tasks.SetPaused(ctx, id, !t.Paused); err != nil {
			return err
		}
		updated, err = tx.Tasks.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("toggle pause", err)
	}
	s.logger.Info("task pause toggled", "task_id", id, "paused", updated.Paused)
	return updated, nil
}
