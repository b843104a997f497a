package rotation

import (
	"context"
	"iter"

	"github.com/dukerupert/chorewheel/internal/apperr"
	"github.com/dukerupert/chorewheel/internal/model"
)

const recentDays = 7

// History returns a task's execution records, newest first. The sequence
// queries the ledger each time it is ranged over. Records with an unreadable
// stored date are logged and skipped.
func (s *Service) History(ctx context.Context, taskID int64) (iter.Seq2[model.ExecutionRecord, error], error) {
	t, err := s.stores.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperr.Storage("history", err)
	}
	if t == nil {
		return nil, apperr.NotFoundf("task %d not found", taskID)
	}
	seq := s.stores.Executions.History(ctx, taskID)
	return func(yield func(model.ExecutionRecord, error) bool) {
		for r, err := range seq {
			if err != nil {
				yield(r, apperr.Storage("history", err))
				return
			}
			if r.MalformedDate {
				s.logger.Warn("skipping execution record with malformed date", "record_id", r.ID, "task_id", taskID)
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
	}, nil
}

// CollectHistory drains History into a slice.
func (s *Service) CollectHistory(ctx context.Context, taskID int64) ([]model.ExecutionRecord, error) {
	seq, err := s.History(ctx, taskID)
	if err != nil {
		return nil, err
	}
	records := []model.ExecutionRecord{}
	for r, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Last7Days groups completions by day for the seven most recent days that
// have any. A nil residentID covers the whole household.
func (s *Service) Last7Days(ctx context.Context, residentID *int64) ([]model.DayHistory, error) {
	if residentID != nil {
		r, err := s.stores.Residents.GetByID(ctx, *residentID)
		if err != nil {
			return nil, apperr.Storage("recent history", err)
		}
		if r == nil {
			return nil, apperr.NotFoundf("resident %d not found", *residentID)
		}
	}
	days, skipped, err := s.stores.Executions.RecentDays(ctx, residentID, recentDays)
	if err != nil {
		return nil, apperr.Storage("recent history", err)
	}
	if skipped > 0 {
		s.logger.Warn("skipped execution records with malformed dates", "count", skipped)
	}
	if days == nil {
		days = []model.DayHistory{}
	}
	return days, nil
}
