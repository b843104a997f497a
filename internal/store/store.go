package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorewheel/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Stores bundles every table store over one querier so a set of writes can
// share a transaction.
type Stores struct {
	db *sql.DB

	Residents  *ResidentStore
	Tasks      *TaskStore
	Holidays   *HolidayStore
	Executions *ExecutionStore
	Trips      *TripStore
}

func New(db *sql.DB) *Stores {
	s := bind(db)
	s.db = db
	return s
}

func bind(q querier) *Stores {
	return &Stores{
		Residents:  &ResidentStore{q: q},
		Tasks:      &TaskStore{q: q},
		Holidays:   &HolidayStore{q: q},
		Executions: &ExecutionStore{q: q},
		Trips:      &TripStore{q: q},
	}
}

// InTx runs fn against stores bound to a single transaction. The transaction
// commits only if fn returns nil; any error or a cancelled ctx rolls it back.
// Calling InTx on stores that are already transactional just runs fn.
func (s *Stores) InTx(ctx context.Context, fn func(tx *Stores) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// storedDate parses a nullable ISO date column. ok is false only when a
// value is present but unreadable; the returned Date is then zero.
func storedDate(ns sql.NullString) (d model.Date, ok bool) {
	if !ns.Valid {
		return model.Date{}, true
	}
	d, err := model.ParseISO(ns.String)
	if err != nil {
		return model.Date{}, false
	}
	return d, true
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
