package model

import "time"

type Resident struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Ordinal       int       `json:"ordinal"`
	InTravel      bool      `json:"in_travel"`
	CurrentTripID *int64    `json:"current_trip_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Roster is the full resident list in ordinal order together with the
// version it was read at.
type Roster struct {
	Version   int64      `json:"version"`
	Residents []Resident `json:"residents"`
}

type Trip struct {
	ID            int64 `json:"id"`
	ResidentID    int64 `json:"resident_id"`
	DepartureDate Date  `json:"departure_date"`
	ReturnDate    Date  `json:"return_date"`

	// MalformedDate is set when a stored date column could not be parsed.
	MalformedDate bool `json:"-"`
}

// Open reports whether the resident has not come back yet.
func (t Trip) Open() bool { return t.ReturnDate.IsZero() }
