package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/dukerupert/chorewheel/internal/model"
)

type ExecutionStore struct {
	q querier
}

const executionCols = `e.id, e.task_id, t.name, e.resident_id, e.resident_name, e.execution_date`

const executionFrom = ` FROM execution_records e JOIN tasks t ON t.id = e.task_id`

// scanExecution flags an unreadable execution date instead of failing.
func scanExecution(scanner interface{ Scan(...any) error }) (*model.ExecutionRecord, error) {
	var r model.ExecutionRecord
	var residentID sql.NullInt64
	var date sql.NullString
	err := scanner.Scan(&r.ID, &r.TaskID, &r.TaskName, &residentID, &r.ResidentName, &date)
	if err != nil {
		return nil, err
	}
	r.ResidentID = int64Ptr(residentID)
	var ok bool
	r.ExecutionDate, ok = storedDate(date)
	r.MalformedDate = !ok || !date.Valid
	return &r, nil
}

// Create appends a record. Records are never updated afterwards.
func (s *ExecutionStore) Create(ctx context.Context, taskID, residentID int64, residentName string, date model.Date) (*model.ExecutionRecord, error) {
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO execution_records (task_id, resident_id, resident_name, execution_date) VALUES (?, ?, ?, ?)`,
		taskID, residentID, residentName, date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert execution record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+executionCols+executionFrom+` WHERE e.id = ?`, id)
	r, err := scanExecution(row)
	if err != nil {
		return nil, fmt.Errorf("get execution record: %w", err)
	}
	return r, nil
}

// GetByTaskAndDate returns the record for (task, date) or nil.
func (s *ExecutionStore) GetByTaskAndDate(ctx context.Context, taskID int64, date model.Date) (*model.ExecutionRecord, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+executionCols+executionFrom+` WHERE e.task_id = ? AND e.execution_date = ?`,
		taskID, date,
	)
	r, err := scanExecution(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get execution record: %w", err)
	}
	return r, nil
}

// History yields a task's records, newest first. Every range over the
// returned sequence runs a fresh query. The rows stay open while the caller
// iterates, so the loop body must not issue other queries on a
// single-connection pool.
func (s *ExecutionStore) History(ctx context.Context, taskID int64) iter.Seq2[model.ExecutionRecord, error] {
	return func(yield func(model.ExecutionRecord, error) bool) {
		rows, err := s.q.QueryContext(ctx,
			`SELECT `+executionCols+executionFrom+` WHERE e.task_id = ? ORDER BY e.execution_date DESC, e.id DESC`,
			taskID,
		)
		if err != nil {
			yield(model.ExecutionRecord{}, fmt.Errorf("list execution records: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scanExecution(rows)
			if err != nil {
				yield(model.ExecutionRecord{}, fmt.Errorf("scan execution record: %w", err))
				return
			}
			if !yield(*r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.ExecutionRecord{}, fmt.Errorf("iterate execution records: %w", err))
		}
	}
}

// RecentDays groups records by date for the most recent n distinct dates.
// A non-nil residentID restricts both the dates and the records to that
// resident. Rows whose stored date is unreadable are left out and counted in
// skipped.
func (s *ExecutionStore) RecentDays(ctx context.Context, residentID *int64, n int) (days []model.DayHistory, skipped int, err error) {
	query := `SELECT e.execution_date, t.name` + executionFrom + `
		WHERE e.execution_date IN (
			SELECT DISTINCT execution_date FROM execution_records
			WHERE (? IS NULL OR resident_id = ?)
			AND execution_date GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]'
			ORDER BY execution_date DESC LIMIT ?
		)
		AND (? IS NULL OR e.resident_id = ?)
		ORDER BY e.execution_date DESC, t.name ASC`
	rid := nullInt64(residentID)

	rows, err := s.q.QueryContext(ctx, query, rid, rid, n, rid, rid)
	if err != nil {
		return nil, 0, fmt.Errorf("list recent executions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw sql.NullString
		var name string
		if err := rows.Scan(&raw, &name); err != nil {
			return nil, 0, fmt.Errorf("scan recent execution: %w", err)
		}
		date, ok := storedDate(raw)
		if !ok || date.IsZero() {
			skipped++
			continue
		}
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, model.DayHistory{Date: date})
		}
		last := &days[len(days)-1]
		last.Tasks = append(last.Tasks, name)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate recent executions: %w", err)
	}
	return days, skipped, nil
}

// DetachResident keeps a resident's records but drops the reference to them.
// The name snapshot stays.
func (s *ExecutionStore) DetachResident(ctx context.Context, residentID int64) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE execution_records SET resident_id = NULL WHERE resident_id = ?`,
		residentID,
	)
	if err != nil {
		return fmt.Errorf("detach resident records: %w", err)
	}
	return nil
}

func (s *ExecutionStore) DeleteByTask(ctx context.Context, taskID int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM execution_records WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("delete execution records: %w", err)
	}
	return nil
}
