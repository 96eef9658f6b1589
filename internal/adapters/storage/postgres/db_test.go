package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !isUniqueViolation(wrapped) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) || isUniqueViolation(nil) {
		t.Fatalf("plain errors are not unique violations")
	}
}

func TestCalendarDate_DropsClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	in := time.Date(2026, 10, 19, 23, 45, 0, 0, loc)

	got := calendarDate(in)
	want := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("calendarDate=%v want %v", got, want)
	}
}

func TestSchema_HasActiveSlotGuard(t *testing.T) {
	if !strings.Contains(schemaSQL, "appointments_active_slot_uq") {
		t.Fatalf("embedded schema must declare the active slot unique index")
	}
	for _, table := range []string{"animals", "vets", "appointments"} {
		if !strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("embedded schema missing table %s", table)
		}
	}
}
