package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/chorewheel/internal/database"
	"github.com/dukerupert/chorewheel/internal/model"
)

func setupTestDB(t *testing.T) *Stores {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx *Stores) error {
		if _, err := tx.Residents.Create(ctx, "Ana"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want %v", err, boom)
	}

	list, err := s.Residents.List(ctx)
	if err != nil {
		t.Fatalf("list residents: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected rollback, got %d residents", len(list))
	}
}

func TestInTxCommits(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx *Stores) error {
		// Nested calls reuse the outer transaction.
		return tx.InTx(ctx, func(inner *Stores) error {
			_, err := inner.Residents.Create(ctx, "Ana")
			return err
		})
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	list, err := s.Residents.List(ctx)
	if err != nil {
		t.Fatalf("list residents: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 resident, got %d", len(list))
	}
}

func TestInTxCancelledContext(t *testing.T) {
	s := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.InTx(ctx, func(tx *Stores) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if called {
		t.Error("fn should not run when the transaction cannot start")
	}
}

func mustResident(t *testing.T, s *Stores, name string) *model.Resident {
	t.Helper()
	r, err := s.Residents.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create resident %q: %v", name, err)
	}
	return r
}

func mustTask(t *testing.T, s *Stores, name string, interval int, due model.Date, owner *int64) *model.Task {
	t.Helper()
	task, err := s.Tasks.Create(context.Background(), name, interval, due, owner)
	if err != nil {
		t.Fatalf("create task %q: %v", name, err)
	}
	return task
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseISO(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}
