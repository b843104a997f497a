package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorewheel/internal/model"
)

type HolidayStore struct {
	q querier
}

const holidayCols = `id, task_id, date`

func scanHoliday(scanner interface{ Scan(...any) error }) (*model.HolidayException, error) {
	var h model.HolidayException
	if err := scanner.Scan(&h.ID, &h.TaskID, &h.Date); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *HolidayStore) Create(ctx context.Context, taskID int64, date model.Date) (*model.HolidayException, error) {
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO holiday_exceptions (task_id, date) VALUES (?, ?)`,
		taskID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert holiday: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *HolidayStore) GetByID(ctx context.Context, id int64) (*model.HolidayException, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+holidayCols+` FROM holiday_exceptions WHERE id = ?`, id)
	h, err := scanHoliday(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get holiday: %w", err)
	}
	return h, nil
}

// Exists reports whether the task has an exception on the given date.
func (s *HolidayStore) Exists(ctx context.Context, taskID int64, date model.Date) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM holiday_exceptions WHERE task_id = ? AND date = ?`,
		taskID, date,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check holiday: %w", err)
	}
	return count > 0, nil
}

func (s *HolidayStore) ListByTask(ctx context.Context, taskID int64) ([]model.HolidayException, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+holidayCols+` FROM holiday_exceptions WHERE task_id = ? ORDER BY date ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []model.HolidayException
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		holidays = append(holidays, *h)
	}
	return holidays, rows.Err()
}

// TaskIDsOn returns the set of tasks that have an exception on date.
func (s *HolidayStore) TaskIDsOn(ctx context.Context, date model.Date) (map[int64]bool, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT task_id FROM holiday_exceptions WHERE date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("list holidays on date: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan holiday task id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (s *HolidayStore) Delete(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM holiday_exceptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	return nil
}

func (s *HolidayStore) DeleteByTask(ctx context.Context, taskID int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM holiday_exceptions WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("delete holidays for task: %w", err)
	}
	return nil
}
