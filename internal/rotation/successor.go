package rotation

import "github.com/dukerupert/chorewheel/internal/model"

// Successor returns the active resident that follows ordinal in rotation
// order: the smallest active ordinal strictly greater than ordinal, wrapping
// to the first active resident. The resident holding ordinal need not be in
// active. active must be sorted by ordinal. Returns nil when active is empty.
func Successor(active []model.Resident, ordinal int) *model.Resident {
	if len(active) == 0 {
		return nil
	}
	for i := range active {
		if active[i].Ordinal > ordinal {
			return &active[i]
		}
	}
	return &active[0]
}

// InitialOwner picks the owner for a task that has none: the first active
// resident who was not the previous owner, or the first active resident if
// that is the only choice. Returns nil when active is empty.
func InitialOwner(active []model.Resident, lastResponsibleID *int64) *model.Resident {
	if len(active) == 0 {
		return nil
	}
	if lastResponsibleID != nil {
		for i := range active {
			if active[i].ID != *lastResponsibleID {
				return &active[i]
			}
		}
	}
	return &active[0]
}
