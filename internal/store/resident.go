package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorewheel/internal/model"
)

type ResidentStore struct {
	q querier
}

const residentCols = `id, name, ordinal, in_travel, current_trip_id, created_at, updated_at`

func scanResident(scanner interface{ Scan(...any) error }) (*model.Resident, error) {
	var r model.Resident
	var tripID sql.NullInt64
	err := scanner.Scan(&r.ID, &r.Name, &r.Ordinal, &r.InTravel, &tripID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.CurrentTripID = int64Ptr(tripID)
	return &r, nil
}

// Create appends a resident at the end of the rotation order.
func (s *ResidentStore) Create(ctx context.Context, name string) (*model.Resident, error) {
	var maxOrdinal int
	err := s.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(ordinal), -1) FROM residents`).Scan(&maxOrdinal)
	if err != nil {
		return nil, fmt.Errorf("query max ordinal: %w", err)
	}

	result, err := s.q.ExecContext(ctx,
		`INSERT INTO residents (name, ordinal) VALUES (?, ?)`,
		name, maxOrdinal+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert resident: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ResidentStore) GetByID(ctx context.Context, id int64) (*model.Resident, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+residentCols+` FROM residents WHERE id = ?`, id)
	r, err := scanResident(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get resident: %w", err)
	}
	return r, nil
}

// List returns every resident in ordinal order.
func (s *ResidentStore) List(ctx context.Context) ([]model.Resident, error) {
	return s.list(ctx, `SELECT `+residentCols+` FROM residents ORDER BY ordinal ASC`)
}

// ListActive returns the residents not currently traveling, in ordinal order.
func (s *ResidentStore) ListActive(ctx context.Context) ([]model.Resident, error) {
	return s.list(ctx, `SELECT `+residentCols+` FROM residents WHERE in_travel = 0 ORDER BY ordinal ASC`)
}

func (s *ResidentStore) list(ctx context.Context, query string, args ...any) ([]model.Resident, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list residents: %w", err)
	}
	defer rows.Close()

	var residents []model.Resident
	for rows.Next() {
		r, err := scanResident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resident: %w", err)
		}
		residents = append(residents, *r)
	}
	return residents, rows.Err()
}

func (s *ResidentStore) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM residents WHERE name = ? AND id != ?`,
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check name exists: %w", err)
	}
	return count > 0, nil
}

func (s *ResidentStore) Delete(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM residents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete resident: %w", err)
	}
	return nil
}

// SetOrdinals writes new ordinal values for the given residents. Values are
// first parked on negative numbers so that swaps never trip the unique index.
func (s *ResidentStore) SetOrdinals(ctx context.Context, ordinals map[int64]int) error {
	for id := range ordinals {
		if _, err := s.q.ExecContext(ctx,
			`UPDATE residents SET ordinal = -ordinal - 1 WHERE id = ?`, id,
		); err != nil {
			return fmt.Errorf("park ordinal for id %d: %w", id, err)
		}
	}
	for id, ordinal := range ordinals {
		if _, err := s.q.ExecContext(ctx,
			`UPDATE residents SET ordinal = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, ordinal, id,
		); err != nil {
			return fmt.Errorf("update ordinal for id %d: %w", id, err)
		}
	}
	return nil
}

// SetTravel flips the travel flag and the open trip reference together.
func (s *ResidentStore) SetTravel(ctx context.Context, id int64, inTravel bool, tripID *int64) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE residents SET in_travel = ?, current_trip_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		inTravel, nullInt64(tripID), id,
	)
	if err != nil {
		return fmt.Errorf("set travel: %w", err)
	}
	return nil
}

// Version returns the current roster version.
func (s *ResidentStore) Version(ctx context.Context) (int64, error) {
	var v int64
	if err := s.q.QueryRowContext(ctx, `SELECT version FROM roster_state WHERE id = 1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("query roster version: %w", err)
	}
	return v, nil
}

// BumpVersion increments the roster version and returns the new value.
func (s *ResidentStore) BumpVersion(ctx context.Context) (int64, error) {
	if _, err := s.q.ExecContext(ctx, `UPDATE roster_state SET version = version + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("bump roster version: %w", err)
	}
	return s.Version(ctx)
}
