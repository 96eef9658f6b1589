package scheduling

import "time"

// AvailableSlots lista los inicios "HH:MM" reservables para el vet en la fecha, en orden cronológico.
// Cada candidato se evalúa con la duración pedida contra las citas activas del día.
// No se cachea: se recalcula en cada consulta.
func (c *Calendar) AvailableSlots(week WeeklyAvailability, date time.Time, existing []Booking, durationMinutes, stepMinutes int) []string {
	hours, open := ResolveAvailability(week, date)
	if !open {
		return []string{}
	}

	durationMinutes = durationOrDefault(durationMinutes)

	candidates := EnumerateSlots(hours.StartHour, hours.EndHour, stepMinutes)
	out := make([]string, 0, len(candidates))
	for _, slot := range candidates {
		iv, err := c.Interval(date, slot, durationMinutes)
		if err != nil {
			continue
		}
		if c.HasConflict(existing, iv, "") {
			continue
		}
		out = append(out, slot)
	}
	return out
}
