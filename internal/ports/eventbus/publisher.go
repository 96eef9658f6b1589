package eventbus

import (
	"context"
	"time"
)

type EventType string

const (
	AppointmentCreated       EventType = "appointment.created"
	AppointmentStatusChanged EventType = "appointment.status_changed"
	AppointmentCancelled     EventType = "appointment.cancelled"
	AppointmentRescheduled   EventType = "appointment.rescheduled"
	AppointmentDeleted       EventType = "appointment.deleted"
)

// Event es el payload publicado en cada cambio del ciclo de vida de una cita.
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	AppointmentID string    `json:"appointment_id"`
	VetID         string    `json:"vet_id"`
	FarmerID      string    `json:"farmer_id"`
	Status        string    `json:"status"`
	ScheduledDate string    `json:"scheduled_date,omitempty"` // YYYY-MM-DD
	ScheduledTime string    `json:"scheduled_time,omitempty"` // HH:MM
	ActorID       string    `json:"actor_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
