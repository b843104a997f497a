package rotation

import (
	"context"
	"strings"

	"github.com/dukerupert/chorewheel/internal/apperr"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/store"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", apperr.Validationf("direction must be %q or %q, got %q", Up, Down, s)
}

// Roster returns every resident in rotation order.
func (s *Service) Roster(ctx context.Context) (*model.Roster, error) {
	var roster *model.Roster
	err := s.stores.InTx(ctx, func(tx *store.Stores) error {
		var err error
		roster, err = readRoster(ctx, tx)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("read roster", err)
	}
	return roster, nil
}

// ActiveResidents returns the residents eligible for rotation, in order.
func (s *Service) ActiveResidents(ctx context.Context) ([]model.Resident, error) {
	active, err := s.stores.Residents.ListActive(ctx)
	if err != nil {
		return nil, apperr.Storage("list active residents", err)
	}
	if active == nil {
		active = []model.Resident{}
	}
	return active, nil
}

func readRoster(ctx context.Context, tx *store.Stores) (*model.Roster, error) {
	version, err := tx.Residents.Version(ctx)
	if err != nil {
		return nil, err
	}
	residents, err := tx.Residents.List(ctx)
	if err != nil {
		return nil, err
	}
	if residents == nil {
		residents = []model.Resident{}
	}
	return &model.Roster{Version: version, Residents: residents}, nil
}

// rosterChanged bumps the roster version and hands out any ownerless tasks.
func rosterChanged(ctx context.Context, tx *store.Stores) error {
	if _, err := tx.Residents.BumpVersion(ctx); err != nil {
		return err
	}
	return assignOwnerless(ctx, tx)
}

// AddResident appends a resident to the end of the rotation.
func (s *Service) AddResident(ctx context.Context, name string) (*model.Resident, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("resident name is required")
	}

	unlock, err := s.lockRoster(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var created *model.Resident
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		exists, err := tx.Residents.NameExists(ctx, name, 0)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflictf("a resident named %q already exists", name)
		}
		created, err = tx.Residents.Create(ctx, name)
		if err != nil {
			return err
		}
		return rosterChanged(ctx, tx)
	})
	if err != nil {
		return nil, apperr.Storage("add resident", err)
	}
	s.logger.Info("resident added", "resident_id", created.ID, "name", created.Name, "ordinal", created.Ordinal)
	return created, nil
}

// RemoveResident deletes a resident. Tasks they own pass to their ordinal
// successor among the remaining active residents. Their execution records are
// kept, detached from the resident but still carrying the name.
func (s *Service) RemoveResident(ctx context.Context, id int64) error {
	unlock, err := s.lockRoster(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		r, err := tx.Residents.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.NotFoundf("resident %d not found", id)
		}

		active, err := tx.Residents.ListActive(ctx)
		if err != nil {
			return err
		}
		remaining := make([]model.Resident, 0, len(active))
		for _, a := range active {
			if a.ID != id {
				remaining = append(remaining, a)
			}
		}
		var heirID *int64
		if heir := Successor(remaining, r.Ordinal); heir != nil {
			heirID = &heir.ID
		}

		owned, err := tx.Tasks.ListByResponsible(ctx, id)
		if err != nil {
			return err
		}
		for _, t := range owned {
			if err := tx.Tasks.SetResponsible(ctx, t.ID, heirID); err != nil {
				return err
			}
		}
		if err := tx.Tasks.ClearLastResponsible(ctx, id); err != nil {
			return err
		}
		if err := tx.Executions.DetachResident(ctx, id); err != nil {
			return err
		}
		if err := tx.Trips.DeleteByResident(ctx, id); err != nil {
			return err
		}
		if err := tx.Residents.Delete(ctx, id); err != nil {
			return err
		}
		return rosterChanged(ctx, tx)
	})
	if err != nil {
		return apperr.Storage("remove resident", err)
	}
	s.logger.Info("resident removed", "resident_id", id)
	return nil
}

// Reorder sets the rotation order of the active residents to ids. ids must
// name every active resident exactly once. The ordinal values the active
// residents already hold are handed out again in the new order, so traveling
// residents keep theirs. A non-nil expectedVersion must match the current
// roster version.
func (s *Service) Reorder(ctx context.Context, ids []int64, expectedVersion *int64) (*model.Roster, error) {
	unlock, err := s.lockRoster(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var roster *model.Roster
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		if expectedVersion != nil {
			version, err := tx.Residents.Version(ctx)
			if err != nil {
				return err
			}
			if version != *expectedVersion {
				return apperr.Conflictf("roster changed: version is %d, expected %d", version, *expectedVersion)
			}
		}

		active, err := tx.Residents.ListActive(ctx)
		if err != nil {
			return err
		}
		if err := sameMembers(active, ids); err != nil {
			return err
		}

		ordinals := make(map[int64]int, len(ids))
		for i, id := range ids {
			if active[i].ID != id {
				ordinals[id] = active[i].Ordinal
			}
		}
		if len(ordinals) > 0 {
			if err := tx.Residents.SetOrdinals(ctx, ordinals); err != nil {
				return err
			}
			if err := rosterChanged(ctx, tx); err != nil {
				return err
			}
		}
		roster, err = readRoster(ctx, tx)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("reorder roster", err)
	}
	s.logger.Info("roster reordered", "version", roster.Version)
	return roster, nil
}

func sameMembers(active []model.Resident, ids []int64) error {
	if len(ids) != len(active) {
		return apperr.Validationf("order must list all %d active residents, got %d ids", len(active), len(ids))
	}
	want := make(map[int64]bool, len(active))
	for _, r := range active {
		want[r.ID] = true
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return apperr.Validationf("resident %d listed twice", id)
		}
		seen[id] = true
		if !want[id] {
			return apperr.Validationf("resident %d is not an active resident", id)
		}
	}
	return nil
}

// MoveAdjacent swaps a resident with its neighbour in the full roster.
// Moving the first resident up or the last one down does nothing.
func (s *Service) MoveAdjacent(ctx context.Context, id int64, dir Direction) (*model.Roster, error) {
	if dir != Up && dir != Down {
		return nil, apperr.Validationf("direction must be %q or %q", Up, Down)
	}

	unlock, err := s.lockRoster(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var roster *model.Roster
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		all, err := tx.Residents.List(ctx)
		if err != nil {
			return err
		}
		idx := -1
		for i := range all {
			if all[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperr.NotFoundf("resident %d not found", id)
		}

		other := idx - 1
		if dir == Down {
			other = idx + 1
		}
		if other >= 0 && other < len(all) {
			a, b := all[idx], all[other]
			if err := tx.Residents.SetOrdinals(ctx, map[int64]int{a.ID: b.Ordinal, b.ID: a.Ordinal}); err != nil {
				return err
			}
			if err := rosterChanged(ctx, tx); err != nil {
				return err
			}
		}
		roster, err = readRoster(ctx, tx)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("move resident", err)
	}
	return roster, nil
}
