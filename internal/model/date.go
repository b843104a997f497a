package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// DisplayLayout is the day-month-year form used at the API boundary.
	DisplayLayout = "02/01/2006"
	// ISOLayout is the form stored in the database.
	ISOLayout = "2006-01-02"
)

// Date is a calendar day with no time of day or zone. The zero value means
// "no date" and is stored as NULL.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDisplay parses DD/MM/YYYY. Anything else is rejected.
func ParseDisplay(s string) (Date, error) {
	return parseStrict(s, DisplayLayout)
}

// ParseISO parses YYYY-MM-DD. Anything else is rejected.
func ParseISO(s string) (Date, error) {
	return parseStrict(s, ISOLayout)
}

// MustParseISO is ParseISO for literals in tests and seeds.
func MustParseISO(s string) Date {
	d, err := ParseISO(s)
	if err != nil {
		panic(err)
	}
	return d
}

func parseStrict(s, layout string) (Date, error) {
	if len(s) != len(layout) {
		return Date{}, fmt.Errorf("invalid date %q: want format %s", s, layoutName(layout))
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want format %s", s, layoutName(layout))
	}
	d := DateOf(t)
	// time.Parse is lenient about some fields; require the exact round trip.
	if t.Format(layout) != s {
		return Date{}, fmt.Errorf("invalid date %q: want format %s", s, layoutName(layout))
	}
	return d, nil
}

func layoutName(layout string) string {
	if layout == DisplayLayout {
		return "DD/MM/YYYY"
	}
	return "YYYY-MM-DD"
}

func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(ISOLayout)
}

func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DisplayLayout)
}

func (d Date) String() string { return d.Display() }

// Value stores the date as ISO text.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.ISO(), nil
}

// Scan reads ISO text. NULL scans to the zero Date.
func (d *Date) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		parsed, err := ParseISO(x)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(x))
	case time.Time:
		*d = DateOf(x)
		return nil
	default:
		return fmt.Errorf("date: unsupported Scan type %T", v)
	}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Display())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDisplay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
