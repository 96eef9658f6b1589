package appointments

import (
	"fmt"
	"time"

	"farm-vet-appointments/internal/scheduling"
)

const (
	CancelWindow     = 2 * time.Hour
	RescheduleWindow = 6 * time.Hour
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition indica si from -> to es válido. Repetir el estado actual siempre es válido (no-op).
func CanTransition(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition cambia el estado y recalcula campos derivados.
// Si to es el estado actual no se toca nada.
func (a *Appointment) Transition(to Status, now time.Time) error {
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	if a.Status == to {
		return nil
	}
	a.Status = to
	Normalize(a, now)
	return nil
}

// Cancel pasa la cita a cancelled registrando quién y por qué.
// La ventana de elegibilidad se valida aparte (CancelCheck).
func (a *Appointment) Cancel(by CancelledBy, reason string, now time.Time) error {
	if err := a.Transition(StatusCancelled, now); err != nil {
		return err
	}
	a.CancelledBy = by
	a.CancellationReason = reason
	return nil
}

// Normalize recalcula los campos derivados antes de persistir:
//   - isEmergency se fuerza a true con priority=emergency (nunca se limpia solo)
//   - timestamps de estado se setean una sola vez
//   - totalFee = consultationFee + travelFee si alguno viene
func Normalize(a *Appointment, now time.Time) {
	if a.Priority == PriorityEmergency {
		a.IsEmergency = true
	}

	switch a.Status {
	case StatusAccepted:
		setOnce(&a.AcceptedAt, now)
	case StatusRejected:
		setOnce(&a.RejectedAt, now)
	case StatusCompleted:
		setOnce(&a.CompletedAt, now)
	case StatusCancelled:
		setOnce(&a.CancelledAt, now)
	}

	if a.ConsultationFee != nil || a.TravelFee != nil {
		total := valueOr(a.ConsultationFee) + valueOr(a.TravelFee)
		a.TotalFee = &total
	}
}

// StartsAt es la fecha programada a la hora programada en loc.
func (a Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return scheduling.ComputeStart(a.ScheduledDate, a.ScheduledTime, loc)
}

// EndsAt es StartsAt + duración.
func (a Appointment) EndsAt(loc *time.Location) (time.Time, error) {
	start, err := a.StartsAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return scheduling.ComputeEnd(start, a.Duration), nil
}

// CancelCheck devuelve nil si la cita puede cancelarse en now, o ErrNotCancellable con el motivo.
func (a Appointment) CancelCheck(now time.Time, loc *time.Location) error {
	return a.windowCheck(now, loc, CancelWindow, ErrNotCancellable)
}

// RescheduleCheck devuelve nil si la cita puede reprogramarse en now, o ErrNotReschedulable con el motivo.
func (a Appointment) RescheduleCheck(now time.Time, loc *time.Location) error {
	return a.windowCheck(now, loc, RescheduleWindow, ErrNotReschedulable)
}

func (a Appointment) CanBeCancelled(now time.Time, loc *time.Location) bool {
	return a.CancelCheck(now, loc) == nil
}

func (a Appointment) CanBeRescheduled(now time.Time, loc *time.Location) bool {
	return a.RescheduleCheck(now, loc) == nil
}

func (a Appointment) windowCheck(now time.Time, loc *time.Location, window time.Duration, base error) error {
	if a.Status != StatusPending && a.Status != StatusAccepted {
		return fmt.Errorf("%w: status is %s", base, a.Status)
	}
	start, err := a.StartsAt(loc)
	if err != nil {
		return fmt.Errorf("%w: %v", base, err)
	}
	if start.Sub(now) <= window {
		return fmt.Errorf("%w: starts in less than %s", base, window)
	}
	return nil
}

func setOnce(dst **time.Time, now time.Time) {
	if *dst != nil {
		return
	}
	t := now
	*dst = &t
}

func valueOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
