package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultStepMinutes es el largo de slot usado por la UI de reservas.
const DefaultStepMinutes = 30

// clockPattern acepta "9:05" y "09:05" (24h).
var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClock indica si s es una hora "HH:MM" válida.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// ParseClock separa "HH:MM" en hora y minuto.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if !ValidClock(s) {
		return 0, 0, ErrInvalidTimeFormat
	}
	hh, mm, _ := strings.Cut(s, ":")
	hour, _ = strconv.Atoi(hh)
	minute, _ = strconv.Atoi(mm)
	return hour, minute, nil
}

// CanonicalClock normaliza una hora válida a "HH:MM" con cero a la izquierda ("9:05" => "09:05").
// Es la forma que se persiste: el orden de los listados y el índice único comparan el string.
func CanonicalClock(s string) (string, error) {
	hour, minute, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// ComputeStart combina la fecha de calendario (solo año/mes/día) con "HH:MM" en loc.
// Segundos y nanosegundos quedan en cero. Si loc es nil se usa la hora local del server.
func ComputeStart(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc), nil
}

// ComputeEnd suma la duración en minutos al inicio.
func ComputeEnd(start time.Time, durationMinutes int) time.Time {
	return start.Add(time.Duration(durationMinutes) * time.Minute)
}

// EnumerateSlots genera los "HH:MM" alineados a step desde startHour:00 hasta endHour:00 (excluido).
func EnumerateSlots(startHour, endHour, stepMinutes int) []string {
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}

	out := make([]string, 0)
	for m := startHour * 60; m < endHour*60; m += stepMinutes {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}
