package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"farm-vet-appointments/internal/domain/appointments"
)

type appointmentRepo struct {
	mu   sync.RWMutex
	byID map[string]appointments.Appointment
}

func NewAppointmentRepo() appointments.Repository {
	return &appointmentRepo{
		byID: make(map[string]appointments.Appointment),
	}
}

func (r *appointmentRepo) Create(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("appointment id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("appointment already exists")
	}
	if r.slotTakenLocked(a) {
		return appointments.ErrSchedulingConflict
	}
	r.byID[a.ID] = clone(a)
	return nil
}

func (r *appointmentRepo) Update(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return notFound(appointments.ErrNotFound)
	}
	if r.slotTakenLocked(a) {
		return appointments.ErrSchedulingConflict
	}
	r.byID[a.ID] = clone(a)
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return appointments.Appointment{}, notFound(appointments.ErrNotFound)
	}
	return clone(a), nil
}

func (r *appointmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return notFound(appointments.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *appointmentRepo) ListActiveByVetAndDate(ctx context.Context, vetID string, date time.Time) ([]appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]appointments.Appointment, 0)
	for _, a := range r.byID {
		if a.VetID != vetID || !a.Status.IsActive() || !sameDay(a.ScheduledDate, date) {
			continue
		}
		out = append(out, clone(a))
	}
	sortBySchedule(out)
	return out, nil
}

func (r *appointmentRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]appointments.Appointment, 0)
	for _, a := range r.byID {
		if filter.FarmerID != "" && a.FarmerID != filter.FarmerID {
			continue
		}
		if filter.VetID != "" && a.VetID != filter.VetID {
			continue
		}

		// Status filter
		if len(filter.Statuses) > 0 {
			ok := false
			for _, s := range filter.Statuses {
				if a.Status == s {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}

		// Date filters (scheduled_date, inclusivo)
		if filter.From != nil && dayOf(a.ScheduledDate).Before(dayOf(*filter.From)) {
			continue
		}
		if filter.To != nil && dayOf(a.ScheduledDate).After(dayOf(*filter.To)) {
			continue
		}

		out = append(out, clone(a))
	}

	sortBySchedule(out)

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// slotTakenLocked replica el índice único parcial de Postgres:
// un vet no puede tener dos citas activas con la misma fecha y hora de inicio.
func (r *appointmentRepo) slotTakenLocked(a appointments.Appointment) bool {
	if !a.Status.IsActive() {
		return false
	}
	for id, other := range r.byID {
		if id == a.ID || other.VetID != a.VetID || !other.Status.IsActive() {
			continue
		}
		if sameDay(other.ScheduledDate, a.ScheduledDate) && other.ScheduledTime == a.ScheduledTime {
			return true
		}
	}
	return false
}

func sortBySchedule(items []appointments.Appointment) {
	sort.Slice(items, func(i, j int) bool {
		di, dj := dayOf(items[i].ScheduledDate), dayOf(items[j].ScheduledDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if items[i].ScheduledTime != items[j].ScheduledTime {
			return items[i].ScheduledTime < items[j].ScheduledTime
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}

func clone(a appointments.Appointment) appointments.Appointment {
	if a.Prescriptions != nil {
		a.Prescriptions = append([]appointments.Prescription(nil), a.Prescriptions...)
	}
	return a
}
