package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorewheel/internal/model"
)

type TaskStore struct {
	q querier
}

const taskCols = `id, name, interval_days, paused, responsible_id, last_responsible_id, last_execution_date, next_due_date, created_at, updated_at`

// scanTask never fails on a bad stored date; it flags the task instead so the
// read path can keep going.
func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var responsible, lastResponsible sql.NullInt64
	var lastExec, nextDue sql.NullString

	err := scanner.Scan(
		&t.ID, &t.Name, &t.IntervalDays, &t.Paused,
		&responsible, &lastResponsible, &lastExec, &nextDue,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.ResponsibleID = int64Ptr(responsible)
	t.LastResponsibleID = int64Ptr(lastResponsible)
	var lastOK, nextOK bool
	t.LastExecutionDate, lastOK = storedDate(lastExec)
	t.NextDueDate, nextOK = storedDate(nextDue)
	t.MalformedDate = !lastOK || !nextOK || !nextDue.Valid
	return &t, nil
}

func (s *TaskStore) Create(ctx context.Context, name string, intervalDays int, nextDue model.Date, responsibleID *int64) (*model.Task, error) {
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO tasks (name, interval_days, next_due_date, responsible_id) VALUES (?, ?, ?, ?)`,
		name, intervalDays, nextDue, nullInt64(responsibleID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List(ctx context.Context) ([]model.Task, error) {
	return s.list(ctx, `SELECT `+taskCols+` FROM tasks ORDER BY name ASC, id ASC`)
}

func (s *TaskStore) ListByResponsible(ctx context.Context, residentID int64) ([]model.Task, error) {
	return s.list(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE responsible_id = ? ORDER BY name ASC, id ASC`,
		residentID,
	)
}

// ListOwnerless returns tasks that currently have no responsible resident.
func (s *TaskStore) ListOwnerless(ctx context.Context) ([]model.Task, error) {
	return s.list(ctx, `SELECT `+taskCols+` FROM tasks WHERE responsible_id IS NULL ORDER BY id ASC`)
}

func (s *TaskStore) list(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(ctx context.Context, id int64, name string, intervalDays int, nextDue model.Date) (*model.Task, error) {
	_, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET name = ?, interval_days = ?, next_due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, intervalDays, nextDue, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *TaskStore) SetResponsible(ctx context.Context, id int64, residentID *int64) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET responsible_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nullInt64(residentID), id,
	)
	if err != nil {
		return fmt.Errorf("set responsible: %w", err)
	}
	return nil
}

func (s *TaskStore) SetPaused(ctx context.Context, id int64, paused bool) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET paused = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		paused, id,
	)
	if err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	return nil
}

// Advance writes the post-execution state of a task in a single statement so
// the owner and date columns can never be observed half-updated.
func (s *TaskStore) Advance(ctx context.Context, id int64, lastResponsibleID *int64, executed, nextDue model.Date, newOwnerID *int64) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET
			last_responsible_id = ?,
			last_execution_date = ?,
			next_due_date = ?,
			responsible_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		nullInt64(lastResponsibleID), executed, nextDue, nullInt64(newOwnerID), id,
	)
	if err != nil {
		return fmt.Errorf("advance task: %w", err)
	}
	return nil
}

// ClearLastResponsible drops references to a resident from the audit column.
func (s *TaskStore) ClearLastResponsible(ctx context.Context, residentID int64) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET last_responsible_id = NULL WHERE last_responsible_id = ?`,
		residentID,
	)
	if err != nil {
		return fmt.Errorf("clear last responsible: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
