package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorewheel/internal/model"
)

type TripStore struct {
	q querier
}

const tripCols = `id, resident_id, departure_date, return_date`

// scanTrip flags unreadable dates instead of failing.
func scanTrip(scanner interface{ Scan(...any) error }) (*model.Trip, error) {
	var t model.Trip
	var departure, ret sql.NullString
	if err := scanner.Scan(&t.ID, &t.ResidentID, &departure, &ret); err != nil {
		return nil, err
	}
	var depOK, retOK bool
	t.DepartureDate, depOK = storedDate(departure)
	t.ReturnDate, retOK = storedDate(ret)
	t.MalformedDate = !depOK || !retOK
	return &t, nil
}

func (s *TripStore) Create(ctx context.Context, residentID int64, departure model.Date) (*model.Trip, error) {
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO trips (resident_id, departure_date) VALUES (?, ?)`,
		residentID, departure,
	)
	if err != nil {
		return nil, fmt.Errorf("insert trip: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *TripStore) GetByID(ctx context.Context, id int64) (*model.Trip, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+tripCols+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

// Open returns the resident's trip without a return date, or nil.
func (s *TripStore) Open(ctx context.Context, residentID int64) (*model.Trip, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+tripCols+` FROM trips WHERE resident_id = ? AND return_date IS NULL`,
		residentID,
	)
	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open trip: %w", err)
	}
	return t, nil
}

func (s *TripStore) Close(ctx context.Context, id int64, returnDate model.Date) (*model.Trip, error) {
	_, err := s.q.ExecContext(ctx, `UPDATE trips SET return_date = ? WHERE id = ?`, returnDate, id)
	if err != nil {
		return nil, fmt.Errorf("close trip: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *TripStore) ListByResident(ctx context.Context, residentID int64) ([]model.Trip, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+tripCols+` FROM trips WHERE resident_id = ? ORDER BY departure_date DESC, id DESC`,
		residentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []model.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (s *TripStore) DeleteByResident(ctx context.Context, residentID int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM trips WHERE resident_id = ?`, residentID)
	if err != nil {
		return fmt.Errorf("delete trips: %w", err)
	}
	return nil
}
