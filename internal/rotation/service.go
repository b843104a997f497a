// Package rotation is the chore scheduling engine: it decides who owns each
// recurring task, when the task is due, and hands it to the next resident when
// it is done. Due status is always computed from stored dates at query time.
package rotation

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/chorewheel/internal/apperr"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/store"
)

const rosterKey = 0

type Service struct {
	stores *store.Stores
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location

	taskLocks   *keyedLock
	rosterLocks *keyedLock
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the household time zone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(stores *store.Stores, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		stores:      stores,
		logger:      logger,
		now:         time.Now,
		loc:         time.Local,
		taskLocks:   newKeyedLock(),
		rosterLocks: newKeyedLock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar day in the household time zone.
func (s *Service) Today() model.Date {
	return model.DateOf(s.now().In(s.loc))
}

func (s *Service) lockTask(ctx context.Context, taskID int64) (func(), error) {
	unlock, err := s.taskLocks.Lock(ctx, taskID)
	if err != nil {
		return nil, apperr.Storage("lock task", err)
	}
	return unlock, nil
}

func (s *Service) lockRoster(ctx context.Context) (func(), error) {
	unlock, err := s.rosterLocks.Lock(ctx, rosterKey)
	if err != nil {
		return nil, apperr.Storage("lock roster", err)
	}
	return unlock, nil
}

// view computes a task's status and resolves its owner's name.
func (s *Service) view(t model.Task, today model.Date, holiday bool, names map[int64]string) TaskView {
	if t.MalformedDate {
		s.logger.Warn("task has malformed stored date", "task_id", t.ID, "next_due", t.NextDueDate.ISO())
	}
	v := TaskView{
		Task:    t,
		Status:  ComputeStatus(t, today, holiday),
		Holiday: holiday,
	}
	if t.ResponsibleID != nil {
		v.OwnerName = names[*t.ResponsibleID]
	}
	return v
}

func residentNames(residents []model.Resident) map[int64]string {
	names := make(map[int64]string, len(residents))
	for _, r := range residents {
		names[r.ID] = r.Name
	}
	return names
}

// assignOwnerless gives every task without an owner to the initial-owner
// pick. It runs after any roster change.
func assignOwnerless(ctx context.Context, tx *store.Stores) error {
	active, err := tx.Residents.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return nil
	}
	tasks, err := tx.Tasks.ListOwnerless(ctx)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		owner := InitialOwner(active, t.LastResponsibleID)
		if err := tx.Tasks.SetResponsible(ctx, t.ID, &owner.ID); err != nil {
			return err
		}
	}
	return nil
}
