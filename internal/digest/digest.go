// Package digest publishes the day's due tasks to the event feed on a cron
// schedule. It only reads from the rotation service.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/rotation"
	"github.com/dukerupert/chorewheel/internal/websocket"
)

const runTimeout = 30 * time.Second

// DueLister is the part of rotation.Service the digest reads.
type DueLister interface {
	Today() model.Date
	DueOn(ctx context.Context, date model.Date) ([]rotation.TaskView, error)
	UnownedDueOn(ctx context.Context, date model.Date) ([]rotation.TaskView, error)
}

// Publisher receives digest messages; *websocket.Hub satisfies it.
type Publisher interface {
	Broadcast(websocket.Message)
}

// Scheduler runs the digest on a standard five-field cron spec.
type Scheduler struct {
	mu       sync.Mutex
	due      DueLister
	pub      Publisher
	schedule string
	loc      *time.Location
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewScheduler(due DueLister, pub Publisher, schedule string, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		due:      due,
		pub:      pub,
		schedule: schedule,
		loc:      loc,
		logger:   logger,
	}
}

// Start schedules the job. Runs triggered after ctx is done are skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("digest scheduler already started")
	}

	cronLog := cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug))
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(s.schedule, func() {
		if ctx.Err() != nil {
			return
		}
		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()
		if _, err := s.RunOnce(runCtx); err != nil {
			s.logger.Error("digest run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("parse digest schedule %q: %w", s.schedule, err)
	}

	c.Start()
	s.cron = c
	s.logger.Info("digest scheduled", "schedule", s.schedule, "location", s.loc.String())
	return nil
}

// Stop halts the schedule and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// RunOnce publishes one message per owner listing that owner's due tasks, and
// one household-wide message for due tasks nobody owns. It returns the number
// of messages sent.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	today := s.due.Today()
	due, err := s.due.DueOn(ctx, today)
	if err != nil {
		return 0, err
	}
	unownedViews, err := s.due.UnownedDueOn(ctx, today)
	if err != nil {
		return 0, err
	}

	byOwner := map[int64][]string{}
	var owners []int64
	for _, v := range due {
		if v.ResponsibleID == nil {
			continue
		}
		id := *v.ResponsibleID
		if _, ok := byOwner[id]; !ok {
			owners = append(owners, id)
		}
		byOwner[id] = append(byOwner[id], v.Name)
	}
	unowned := make([]string, 0, len(unownedViews))
	for _, v := range unownedViews {
		unowned = append(unowned, v.Name)
	}

	sent := 0
	for _, id := range owners {
		s.pub.Broadcast(websocket.NewMessage("digest", "due", id, map[string]any{
			"date":  today,
			"tasks": byOwner[id],
		}).For(id))
		sent++
	}
	if len(unowned) > 0 {
		s.pub.Broadcast(websocket.NewMessage("digest", "unowned", 0, map[string]any{
			"date":  today,
			"tasks": unowned,
		}))
		sent++
	}
	s.logger.Info("digest published", "date", today.ISO(), "due", len(due), "unowned", len(unowned), "messages", sent)
	return sent, nil
}
