package appointments

import (
	"strings"
	"time"
	"unicode/utf8"

	"farm-vet-appointments/internal/ports/auth"
	"farm-vet-appointments/internal/scheduling"
)

// Details son los campos comunes a ambas formas de creación.
type Details struct {
	AnimalID   string
	AnimalName string

	ScheduledDate time.Time
	ScheduledTime string
	Duration      int

	Type        Type
	Priority    Priority
	Symptoms    string
	Description string

	ConsultationFee *float64
	TravelFee       *float64
}

// CreateRequest es la entrada de creación: FarmerBooking o VetBooking.
// Se resuelve una sola vez a NewAppointment en el borde.
type CreateRequest interface {
	resolve(actor auth.Claims) (NewAppointment, error)
}

// FarmerBooking: el granjero pide una cita con un veterinario.
type FarmerBooking struct {
	VetID string
	Details
}

// VetBooking: el veterinario agenda una cita para un granjero.
type VetBooking struct {
	FarmerID string
	Details
}

// NewAppointment es la solicitud normalizada que consume el servicio.
type NewAppointment struct {
	FarmerID string
	VetID    string
	Details
}

func (b FarmerBooking) resolve(actor auth.Claims) (NewAppointment, error) {
	if actor.Role != auth.RoleFarmer {
		return NewAppointment{}, ErrForbidden
	}
	return NewAppointment{
		FarmerID: strings.TrimSpace(actor.UserID),
		VetID:    strings.TrimSpace(b.VetID),
		Details:  b.Details,
	}, nil
}

func (b VetBooking) resolve(actor auth.Claims) (NewAppointment, error) {
	if actor.Role != auth.RoleVet {
		return NewAppointment{}, ErrForbidden
	}
	return NewAppointment{
		FarmerID: strings.TrimSpace(b.FarmerID),
		VetID:    strings.TrimSpace(actor.UserID),
		Details:  b.Details,
	}, nil
}

// ResolveCreate convierte la variante en la solicitud normalizada y la valida.
func ResolveCreate(actor auth.Claims, req CreateRequest) (NewAppointment, error) {
	if req == nil {
		return NewAppointment{}, ErrInvalidInput
	}
	n, err := req.resolve(actor)
	if err != nil {
		return NewAppointment{}, err
	}
	n.normalize()
	if err := n.Validate(); err != nil {
		return NewAppointment{}, err
	}
	return n, nil
}

func (n *NewAppointment) normalize() {
	n.AnimalID = strings.TrimSpace(n.AnimalID)
	n.AnimalName = strings.TrimSpace(n.AnimalName)
	if clock, err := scheduling.CanonicalClock(n.ScheduledTime); err == nil {
		n.ScheduledTime = clock
	}
	n.Symptoms = strings.TrimSpace(n.Symptoms)
	n.Description = strings.TrimSpace(n.Description)
	if n.Duration == 0 {
		n.Duration = DefaultDuration
	}
	if n.Type == "" {
		n.Type = TypeConsultation
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
}

// Validate aplica las reglas de datos previas a la detección de solapamientos.
func (n NewAppointment) Validate() error {
	if n.FarmerID == "" || n.VetID == "" || n.FarmerID == n.VetID {
		return ErrInvalidInput
	}
	if n.ScheduledDate.IsZero() {
		return ErrInvalidInput
	}
	if !scheduling.ValidClock(n.ScheduledTime) {
		return ErrInvalidTimeFormat
	}
	if err := ValidateDuration(n.Duration); err != nil {
		return err
	}
	if n.AnimalID == "" && n.AnimalName == "" {
		return ErrMissingRequiredIdentity
	}
	if n.AnimalID != "" && n.AnimalName != "" {
		return ErrInvalidInput
	}
	if n.Symptoms == "" || utf8.RuneCountInString(n.Symptoms) > MaxSymptomsLen {
		return ErrInvalidInput
	}
	if !n.Type.Valid() || !n.Priority.Valid() {
		return ErrInvalidInput
	}
	if negative(n.ConsultationFee) || negative(n.TravelFee) {
		return ErrInvalidInput
	}
	return nil
}

func ValidateDuration(minutes int) error {
	if minutes < MinDuration || minutes > MaxDuration {
		return ErrInvalidDuration
	}
	return nil
}

func negative(p *float64) bool {
	return p != nil && *p < 0
}
