package logbus

import (
	"context"
	"log/slog"

	"farm-vet-appointments/internal/ports/eventbus"
)

// Publisher registra los eventos en el log. Se usa cuando no hay brokers configurados.
type Publisher struct {
	log *slog.Logger
}

func NewPublisher(log *slog.Logger) *Publisher {
	return &Publisher{log: log}
}

func (p *Publisher) Publish(ctx context.Context, e eventbus.Event) error {
	p.log.InfoContext(ctx, "appointment event",
		"event_id", e.ID,
		"event_type", string(e.Type),
		"appointment_id", e.AppointmentID,
		"vet_id", e.VetID,
		"farmer_id", e.FarmerID,
		"status", e.Status,
		"actor_id", e.ActorID,
	)
	return nil
}
