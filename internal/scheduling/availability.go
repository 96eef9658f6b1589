package scheduling

import (
	"strings"
	"time"
)

const (
	DefaultOpenHour  = 9
	DefaultCloseHour = 17
)

// DayAvailability es la configuración de un día de la semana del veterinario.
type DayAvailability struct {
	Start     string `json:"start,omitempty"` // HH:MM
	End       string `json:"end,omitempty"`   // HH:MM
	Available bool   `json:"available"`
}

// WeeklyAvailability se indexa por nombre de día en minúsculas ("sunday".."saturday").
type WeeklyAvailability map[string]DayAvailability

// OpenHours es el intervalo [StartHour, EndHour) en que atiende el veterinario.
type OpenHours struct {
	StartHour int
	EndHour   int
}

// DayKey devuelve la clave del mapa semanal para un weekday.
func DayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// WeekdayOf calcula el día de la semana (0=domingo) de una fecha de calendario.
func WeekdayOf(date time.Time) time.Weekday {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Weekday()
}

// ResolveAvailability devuelve las horas de atención para la fecha, o false si ese día está cerrado.
func ResolveAvailability(week WeeklyAvailability, date time.Time) (OpenHours, bool) {
	day, ok := week[DayKey(WeekdayOf(date))]
	if !ok || !day.Available {
		return OpenHours{}, false
	}

	return OpenHours{
		StartHour: hourOr(day.Start, DefaultOpenHour),
		EndHour:   hourOr(day.End, DefaultCloseHour),
	}, true
}

// Validate revisa claves y horarios de la configuración semanal.
func (w WeeklyAvailability) Validate() error {
	for key, day := range w {
		if !validDayKey(key) {
			return ErrInvalidAvailability
		}
		if day.Start != "" && !ValidClock(day.Start) {
			return ErrInvalidTimeFormat
		}
		if day.End != "" && !ValidClock(day.End) {
			return ErrInvalidTimeFormat
		}
		if day.Available && hourOr(day.Start, DefaultOpenHour) >= hourOr(day.End, DefaultCloseHour) {
			return ErrInvalidAvailability
		}
	}
	return nil
}

// Normalize devuelve una copia con claves en minúsculas y horas sin espacios.
func (w WeeklyAvailability) Normalize() WeeklyAvailability {
	out := make(WeeklyAvailability, len(w))
	for key, day := range w {
		day.Start = strings.TrimSpace(day.Start)
		day.End = strings.TrimSpace(day.End)
		out[strings.ToLower(strings.TrimSpace(key))] = day
	}
	return out
}

func hourOr(clock string, fallback int) int {
	if strings.TrimSpace(clock) == "" {
		return fallback
	}
	h, _, err := ParseClock(clock)
	if err != nil {
		return fallback
	}
	return h
}

func validDayKey(key string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if DayKey(d) == key {
			return true
		}
	}
	return false
}
