package scheduling

import (
	"testing"
	"time"
)

func TestResolveAvailability(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	sunday := monday.AddDate(0, 0, -1)

	if WeekdayOf(monday) != time.Monday {
		t.Fatalf("expected fixture date to be a monday, got %s", WeekdayOf(monday))
	}

	week := WeeklyAvailability{
		"monday":  {Start: "08:00", End: "12:00", Available: true},
		"tuesday": {Available: true},
		"sunday":  {Start: "10:00", End: "14:00", Available: false},
	}

	cases := []struct {
		name  string
		date  time.Time
		open  bool
		hours OpenHours
	}{
		{"explicit hours", monday, true, OpenHours{StartHour: 8, EndHour: 12}},
		{"default hours", tuesday, true, OpenHours{StartHour: 9, EndHour: 17}},
		{"marked unavailable", sunday, false, OpenHours{}},
		{"missing entry", monday.AddDate(0, 0, 2), false, OpenHours{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hours, open := ResolveAvailability(week, tc.date)
			if open != tc.open {
				t.Fatalf("expected open=%v, got %v", tc.open, open)
			}
			if hours != tc.hours {
				t.Fatalf("expected %+v, got %+v", tc.hours, hours)
			}
		})
	}
}

func TestWeeklyAvailability_Validate(t *testing.T) {
	ok := WeeklyAvailability{
		"monday": {Start: "09:00", End: "17:00", Available: true},
		"friday": {Available: false},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := (WeeklyAvailability{"funday": {Available: true}}).Validate(); err != ErrInvalidAvailability {
		t.Fatalf("expected ErrInvalidAvailability for unknown day, got %v", err)
	}
	if err := (WeeklyAvailability{"monday": {Start: "9am", Available: true}}).Validate(); err != ErrInvalidTimeFormat {
		t.Fatalf("expected ErrInvalidTimeFormat, got %v", err)
	}
	if err := (WeeklyAvailability{"monday": {Start: "18:00", End: "10:00", Available: true}}).Validate(); err != ErrInvalidAvailability {
		t.Fatalf("expected ErrInvalidAvailability for inverted hours, got %v", err)
	}
}
