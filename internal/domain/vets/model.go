package vets

import (
	"time"

	"farm-vet-appointments/internal/scheduling"
)

// Vet es el perfil público de un veterinario. ID = user id del veterinario.
type Vet struct {
	ID string

	Name           string
	Specialization string
	Phone          string
	ServiceArea    string

	ConsultationFee *float64

	Availability scheduling.WeeklyAvailability

	CreatedAt time.Time
	UpdatedAt time.Time
}
