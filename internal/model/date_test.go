package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDisplay(t *testing.T) {
	d, err := ParseDisplay("10/04/2025")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != NewDate(2025, time.April, 10) {
		t.Errorf("date = %+v", d)
	}
	if d.ISO() != "2025-04-10" {
		t.Errorf("ISO = %q, want %q", d.ISO(), "2025-04-10")
	}
}

func TestParseDisplayRejects(t *testing.T) {
	bad := []string{
		"",
		"2025-04-10",
		"1/4/2025",
		"10-04-2025",
		"31/02/2025",
		"10/13/2025",
		"10/04/25",
		" 10/04/2025",
		"10/04/2025 ",
	}
	for _, s := range bad {
		if _, err := ParseDisplay(s); err == nil {
			t.Errorf("ParseDisplay(%q) should fail", s)
		}
	}
}

func TestParseISORejects(t *testing.T) {
	for _, s := range []string{"10/04/2025", "2025-4-10", "2025-02-30", "2025-04-10T00:00:00Z"} {
		if _, err := ParseISO(s); err == nil {
			t.Errorf("ParseISO(%q) should fail", s)
		}
	}
}

func TestDisplayISORoundTrip(t *testing.T) {
	d, err := ParseISO("2024-02-29")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Display() != "29/02/2024" {
		t.Errorf("display = %q", d.Display())
	}
	back, err := ParseDisplay(d.Display())
	if err != nil {
		t.Fatalf("parse display: %v", err)
	}
	if back.ISO() != "2024-02-29" {
		t.Errorf("iso = %q", back.ISO())
	}
}

func TestAddDaysAndCompare(t *testing.T) {
	d := MustParseISO("2025-01-30")
	next := d.AddDays(3)
	if next.ISO() != "2025-02-02" {
		t.Errorf("AddDays = %s", next.ISO())
	}
	if !d.Before(next) || !next.After(d) || d.Compare(d) != 0 {
		t.Error("ordering broken")
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
		E Date `json:"e"`
	}
	if err := json.Unmarshal([]byte(`{"d":"05/01/2026","e":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.D.ISO() != "2026-01-05" || !v.E.IsZero() {
		t.Errorf("got %+v", v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"d":"05/01/2026","e":null}` {
		t.Errorf("json = %s", b)
	}
	if err := json.Unmarshal([]byte(`{"d":"2026-01-05"}`), &v); err == nil {
		t.Error("ISO input at the JSON boundary should be rejected")
	}
}

func TestDateScanValue(t *testing.T) {
	var d Date
	if err := d.Scan("2025-04-10"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	v, err := d.Value()
	if err != nil || v != "2025-04-10" {
		t.Errorf("value = %v, %v", v, err)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Errorf("scan nil: %v %+v", err, d)
	}
	if v, _ := d.Value(); v != nil {
		t.Errorf("zero value = %v, want nil", v)
	}
	if err := d.Scan("10/04/2025"); err == nil {
		t.Error("display form in storage should be rejected")
	}
}
