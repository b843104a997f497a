package digest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dukerupert/chorewheel/internal/database"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/rotation"
	"github.com/dukerupert/chorewheel/internal/store"
	"github.com/dukerupert/chorewheel/internal/websocket"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeDue struct {
	today   model.Date
	views   []rotation.TaskView
	unowned []rotation.TaskView
	err     error
}

func (f *fakeDue) Today() model.Date { return f.today }

func (f *fakeDue) DueOn(ctx context.Context, date model.Date) ([]rotation.TaskView, error) {
	return f.views, f.err
}

func (f *fakeDue) UnownedDueOn(ctx context.Context, date model.Date) ([]rotation.TaskView, error) {
	return f.unowned, f.err
}

type recorder struct {
	mu   sync.Mutex
	msgs []websocket.Message
}

func (r *recorder) Broadcast(m websocket.Message) {
	r.mu.Lock()
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func view(id int64, name string, owner *int64) rotation.TaskView {
	return rotation.TaskView{Task: model.Task{ID: id, Name: name, ResponsibleID: owner}, Status: rotation.StatusDue}
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRunOnceGroupsByOwner(t *testing.T) {
	ana, ben := int64(1), int64(2)
	due := &fakeDue{
		today: model.MustParseISO("2025-01-10"),
		views: []rotation.TaskView{
			view(1, "Trash", &ana),
			view(2, "Dishes", &ben),
			view(3, "Mop", &ana),
		},
		unowned: []rotation.TaskView{
			{Task: model.Task{ID: 4, Name: "Attic"}, Status: rotation.StatusNoOwner},
		},
	}
	rec := &recorder{}
	s := NewScheduler(due, rec, "0 7 * * *", time.UTC, quiet())

	sent, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	require.Len(t, rec.msgs, 3)

	assert.Equal(t, "digest_due", rec.msgs[0].Type)
	assert.Equal(t, []int64{ana}, rec.msgs[0].Audience)
	assert.Equal(t, []string{"Trash", "Mop"}, rec.msgs[0].Extra["tasks"])
	assert.Equal(t, []int64{ben}, rec.msgs[1].Audience)
	assert.Equal(t, "digest_unowned", rec.msgs[2].Type)
	assert.Equal(t, []string{"Attic"}, rec.msgs[2].Extra["tasks"])
	assert.Empty(t, rec.msgs[2].Audience)
}

func TestRunOnceReportsUnownedTasksFromService(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC)
	svc := rotation.NewService(store.New(db), quiet(),
		rotation.WithClock(func() time.Time { return now }),
		rotation.WithLocation(time.UTC),
	)
	ctx := context.Background()

	// No residents yet, so nobody owns either task.
	_, err = svc.CreateTask(ctx, "Gutters", 30, model.MustParseISO("2025-01-08"))
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "Chimney", 30, model.MustParseISO("2025-02-01"))
	require.NoError(t, err)

	rec := &recorder{}
	s := NewScheduler(svc, rec, "0 7 * * *", time.UTC, quiet())
	sent, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "digest_unowned", rec.msgs[0].Type)
	assert.Equal(t, []string{"Gutters"}, rec.msgs[0].Extra["tasks"])
}

func TestRunOnceNothingDue(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(&fakeDue{today: model.MustParseISO("2025-01-10")}, rec, "0 7 * * *", time.UTC, quiet())

	sent, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, rec.count())
}

func TestRunOnceError(t *testing.T) {
	boom := errors.New("boom")
	s := NewScheduler(&fakeDue{err: boom}, &recorder{}, "0 7 * * *", time.UTC, quiet())
	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&fakeDue{}, &recorder{}, "whenever", time.UTC, quiet())
	assert.Error(t, s.Start(context.Background()))
	s.Stop()
}

func TestStartStop(t *testing.T) {
	ana := int64(1)
	due := &fakeDue{today: model.MustParseISO("2025-01-10"), views: []rotation.TaskView{view(1, "Trash", &ana)}}
	rec := &recorder{}
	s := NewScheduler(due, rec, "@every 10ms", time.UTC, quiet())

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "second start")

	assert.Eventually(t, func() bool { return rec.count() > 0 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()
}
