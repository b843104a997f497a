package store

import (
	"context"
	"testing"
)

func TestResidentCreateAppendsOrdinal(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	for i, name := range []string{"Ana", "Ben", "Cy"} {
		r, err := s.Residents.Create(ctx, name)
		if err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
		if r.Ordinal != i {
			t.Errorf("%s ordinal = %d, want %d", name, r.Ordinal, i)
		}
		if r.InTravel {
			t.Errorf("%s should not start traveling", name)
		}
	}
}

func TestResidentGetByIDNotFound(t *testing.T) {
	s := setupTestDB(t)

	r, err := s.Residents.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r != nil {
		t.Errorf("expected nil, got %+v", r)
	}
}

func TestResidentNameUnique(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	ana := mustResident(t, s, "Ana")

	exists, err := s.Residents.NameExists(ctx, "Ana", 0)
	if err != nil {
		t.Fatalf("name exists: %v", err)
	}
	if !exists {
		t.Error("expected Ana to exist")
	}
	exists, err = s.Residents.NameExists(ctx, "Ana", ana.ID)
	if err != nil {
		t.Fatalf("name exists: %v", err)
	}
	if exists {
		t.Error("excluded id should not count")
	}

	if _, err := s.Residents.Create(ctx, "Ana"); err == nil {
		t.Error("expected unique constraint error")
	}
}

func TestResidentSetOrdinalsSwap(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	ana := mustResident(t, s, "Ana")
	ben := mustResident(t, s, "Ben")

	err := s.Residents.SetOrdinals(ctx, map[int64]int{ana.ID: ben.Ordinal, ben.ID: ana.Ordinal})
	if err != nil {
		t.Fatalf("set ordinals: %v", err)
	}

	list, err := s.Residents.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ID != ben.ID || list[1].ID != ana.ID {
		t.Errorf("order = [%s %s], want [Ben Ana]", list[0].Name, list[1].Name)
	}
}

func TestResidentTravelAndActive(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	ana := mustResident(t, s, "Ana")
	ben := mustResident(t, s, "Ben")

	trip, err := s.Trips.Create(ctx, ana.ID, mustDate(t, "2025-03-01"))
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if err := s.Residents.SetTravel(ctx, ana.ID, true, &trip.ID); err != nil {
		t.Fatalf("set travel: %v", err)
	}

	active, err := s.Residents.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != ben.ID {
		t.Fatalf("active = %+v, want only Ben", active)
	}

	got, err := s.Residents.GetByID(ctx, ana.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.InTravel || got.CurrentTripID == nil || *got.CurrentTripID != trip.ID {
		t.Errorf("travel state = %v/%v, want true/%d", got.InTravel, got.CurrentTripID, trip.ID)
	}
}

func TestRosterVersion(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	v, err := s.Residents.Version(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 0 {
		t.Errorf("initial version = %d, want 0", v)
	}

	next, err := s.Residents.BumpVersion(ctx)
	if err != nil {
		t.Fatalf("bump: %v", err)
	}
	if next != 1 {
		t.Errorf("bumped version = %d, want 1", next)
	}
}

func TestResidentDelete(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	ana := mustResident(t, s, "Ana")

	if err := s.Residents.Delete(ctx, ana.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.Residents.GetByID(ctx, ana.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected resident to be gone")
	}
}
