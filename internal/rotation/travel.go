package rotation

import (
	"context"

	"github.com/dukerupert/chorewheel/internal/apperr"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/store"
)

// StartTrip takes a resident out of the active roster from departure on.
// Tasks the resident owns stay with them; Reassign is the way to move one.
func (s *Service) StartTrip(ctx context.Context, residentID int64, departure model.Date) (*model.Trip, error) {
	if departure.IsZero() {
		return nil, apperr.Validationf("departure date is required")
	}

	unlock, err := s.lockRoster(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var trip *model.Trip
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		r, err := tx.Residents.GetByID(ctx, residentID)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.NotFoundf("resident %d not found", residentID)
		}
		open, err := tx.Trips.Open(ctx, residentID)
		if err != nil {
			return err
		}
		if open != nil {
			return apperr.Conflictf("resident %q already has an open trip since %s", r.Name, open.DepartureDate)
		}
		trip, err = tx.Trips.Create(ctx, residentID, departure)
		if err != nil {
			return err
		}
		if err := tx.Residents.SetTravel(ctx, residentID, true, &trip.ID); err != nil {
			return err
		}
		return rosterChanged(ctx, tx)
	})
	if err != nil {
		return nil, apperr.Storage("start trip", err)
	}
	s.logger.Info("trip started", "resident_id", residentID, "trip_id", trip.ID, "departure", departure.ISO())
	return trip, nil
}

// RegisterReturn closes a trip and puts the resident back into rotation at
// their existing ordinal. Tasks left without an owner are handed out again.
func (s *Service) RegisterReturn(ctx context.Context, tripID int64, returnDate model.Date) (*model.Trip, error) {
	if returnDate.IsZero() {
		return nil, apperr.Validationf("return date is required")
	}

	unlock, err := s.lockRoster(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var trip *model.Trip
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		t, err := tx.Trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFoundf("trip %d not found", tripID)
		}
		if !t.Open() {
			return apperr.Conflictf("trip %d already ended on %s", tripID, t.ReturnDate)
		}
		if returnDate.Before(t.DepartureDate) {
			return apperr.Validationf("return date %s is before departure %s", returnDate, t.DepartureDate)
		}
		trip, err = tx.Trips.Close(ctx, tripID, returnDate)
		if err != nil {
			return err
		}
		if err := tx.Residents.SetTravel(ctx, t.ResidentID, false, nil); err != nil {
			return err
		}
		return rosterChanged(ctx, tx)
	})
	if err != nil {
		return nil, apperr.Storage("register return", err)
	}
	s.logger.Info("trip ended", "trip_id", tripID, "resident_id", trip.ResidentID, "return", returnDate.ISO())
	return trip, nil
}

// CurrentTrip returns the resident's open trip, or nil.
func (s *Service) CurrentTrip(ctx context.Context, residentID int64) (*model.Trip, error) {
	var trip *model.Trip
	err := s.stores.InTx(ctx, func(tx *store.Stores) error {
		r, err := tx.Residents.GetByID(ctx, residentID)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.NotFoundf("resident %d not found", residentID)
		}
		trip, err = tx.Trips.Open(ctx, residentID)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("current trip", err)
	}
	return trip, nil
}

// ListTrips returns a resident's trips, newest first.
func (s *Service) ListTrips(ctx context.Context, residentID int64) ([]model.Trip, error) {
	var trips []model.Trip
	err := s.stores.InTx(ctx, func(tx *store.Stores) error {
		r, err := tx.Residents.GetByID(ctx, residentID)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.NotFoundf("resident %d not found", residentID)
		}
		trips, err = tx.Trips.ListByResident(ctx, residentID)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("list trips", err)
	}
	for _, t := range trips {
		if t.MalformedDate {
			s.logger.Warn("trip has malformed stored date", "trip_id", t.ID, "resident_id", residentID)
		}
	}
	if trips == nil {
		trips = []model.Trip{}
	}
	return trips, nil
}
