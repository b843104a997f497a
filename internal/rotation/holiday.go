package rotation

import (
	"context"

	"github.com/dukerupert/chorewheel/internal/apperr"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/store"
)

// AddHoliday suppresses the task's due status on date without moving its
// schedule.
func (s *Service) AddHoliday(ctx context.Context, taskID int64, date model.Date) (*model.HolidayException, error) {
	if date.IsZero() {
		return nil, apperr.Validationf("holiday date is required")
	}
	var h *model.HolidayException
	err := s.stores.InTx(ctx, func(tx *store.Stores) error {
		t, err := tx.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFoundf("task %d not found", taskID)
		}
		exists, err := tx.Holidays.Exists(ctx, taskID, date)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflictf("task %q already has a holiday on %s", t.Name, date)
		}
		h, err = tx.Holidays.Create(ctx, taskID, date)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("add holiday", err)
	}
	return h, nil
}

// RemoveHoliday deletes an exception and returns it.
func (s *Service) RemoveHoliday(ctx context.Context, id int64) (*model.HolidayException, error) {
	var h *model.HolidayException
	err := s.stores.InTx(ctx, func(tx *store.Stores) error {
		var err error
		h, err = tx.Holidays.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return apperr.NotFoundf("holiday %d not found", id)
		}
		return tx.Holidays.Delete(ctx, id)
	})
	if err != nil {
		return nil, apperr.Storage("remove holiday", err)
	}
	return h, nil
}

func (s *Service) ListHolidays(ctx context.Context, taskID int64) ([]model.HolidayException, error) {
	var holidays []model.HolidayException
	err := s.stores.InTx(ctx, func(tx *store.Stores) error {
		t, err := tx.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFoundf("task %d not found", taskID)
		}
		holidays, err = tx.Holidays.ListByTask(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("list holidays", err)
	}
	if holidays == nil {
		holidays = []model.HolidayException{}
	}
	return holidays, nil
}

func (s *Service) IsHoliday(ctx context.Context, taskID int64, date model.Date) (bool, error) {
	ok, err := s.stores.Holidays.Exists(ctx, taskID, date)
	if err != nil {
		return false, apperr.Storage("check holiday", err)
	}
	return ok, nil
}
