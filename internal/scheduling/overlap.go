package scheduling

import (
	"io"
	"log/slog"
	"time"
)

// Booking es la vista mínima de una cita existente que necesita el detector.
// El caller entrega solo citas activas (pending, accepted, in-progress) del mismo vet y fecha.
type Booking struct {
	ID              string
	VetID           string
	Date            time.Time
	Time            string // HH:MM
	DurationMinutes int
}

// Interval es un intervalo semiabierto [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps: [s1,e1) y [s2,e2) chocan si s1 < e2 && s2 < e1. Extremos que se tocan no chocan.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Calendar agrupa la zona horaria del servicio y el logger para las operaciones de agenda.
type Calendar struct {
	loc *time.Location
	log *slog.Logger
}

func NewCalendar(loc *time.Location, logger *slog.Logger) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Calendar{loc: loc, log: logger}
}

func (c *Calendar) Location() *time.Location { return c.loc }

// Interval calcula [inicio, inicio+duración) para una fecha y hora "HH:MM".
func (c *Calendar) Interval(date time.Time, clock string, durationMinutes int) (Interval, error) {
	start, err := ComputeStart(date, clock, c.loc)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: ComputeEnd(start, durationMinutes)}, nil
}

// HasConflict informa si proposed choca con alguna cita existente.
// excludeID evita comparar una cita consigo misma al reprogramar.
func (c *Calendar) HasConflict(existing []Booking, proposed Interval, excludeID string) bool {
	_, found := c.FirstConflict(existing, proposed, excludeID)
	return found
}

// FirstConflict devuelve la primera cita que choca con proposed.
// Las citas con hora mal formada se saltan (y se loguean) para no bloquear la agenda del día.
func (c *Calendar) FirstConflict(existing []Booking, proposed Interval, excludeID string) (Booking, bool) {
	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}

		iv, err := c.Interval(b.Date, b.Time, durationOrDefault(b.DurationMinutes))
		if err != nil {
			c.log.Warn("skipping appointment with malformed scheduled time",
				"appointment_id", b.ID,
				"vet_id", b.VetID,
				"scheduled_time", b.Time,
			)
			continue
		}

		if Overlaps(proposed, iv) {
			return b, true
		}
	}
	return Booking{}, false
}

func durationOrDefault(minutes int) int {
	if minutes <= 0 {
		return DefaultStepMinutes
	}
	return minutes
}
