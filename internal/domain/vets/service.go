package vets

import (
	"context"
	"errors"
	"strings"
	"time"

	"farm-vet-appointments/internal/ports/auth"
	"farm-vet-appointments/internal/scheduling"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("vet not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidTimeFormat   = scheduling.ErrInvalidTimeFormat
	ErrInvalidAvailability = scheduling.ErrInvalidAvailability
)

const (
	MinSlotDuration = 15
	MaxSlotDuration = 240
)

// BookingSource expone las citas del vet que este paquete necesita.
// Lo implementa appointments.Service; la interfaz evita el ciclo de imports.
type BookingSource interface {
	ActiveBookings(ctx context.Context, vetID string, date time.Time) ([]scheduling.Booking, error)
	// CancelActiveForVet cancela como system las citas activas del vet y devuelve cuántas.
	CancelActiveForVet(ctx context.Context, vetID, reason string) (int, error)
}

// RemovalReason queda como cancellation_reason de las citas afectadas por RemoveProfile.
const RemovalReason = "vet profile removed"

type Service struct {
	repo     Repository
	bookings BookingSource
	cal      *scheduling.Calendar
	now      func() time.Time
}

func NewService(repo Repository, cal *scheduling.Calendar) *Service {
	if cal == nil {
		cal = scheduling.NewCalendar(time.Local, nil)
	}
	return &Service{
		repo: repo,
		cal:  cal,
		now:  time.Now,
	}
}

// UseBookings conecta la fuente de citas activas. Se llama una vez al armar el router,
// después de construir appointments (que a su vez depende de este servicio).
func (s *Service) UseBookings(src BookingSource) {
	s.bookings = src
}

type ProfileInput struct {
	Name            string
	Specialization  string
	Phone           string
	ServiceArea     string
	ConsultationFee *float64
}

// UpsertProfile crea o actualiza el perfil del veterinario autenticado.
// La disponibilidad existente se conserva.
func (s *Service) UpsertProfile(ctx context.Context, actor auth.Claims, in ProfileInput) (Vet, error) {
	uid := strings.TrimSpace(actor.UserID)
	if uid == "" {
		return Vet{}, ErrInvalidInput
	}
	if actor.Role != auth.RoleVet {
		return Vet{}, ErrForbidden
	}
	if strings.TrimSpace(in.Name) == "" {
		return Vet{}, ErrInvalidInput
	}
	if in.ConsultationFee != nil && *in.ConsultationFee < 0 {
		return Vet{}, ErrInvalidInput
	}

	now := s.now()
	v, err := s.repo.GetByID(ctx, uid)
	switch {
	case errors.Is(err, ErrNotFound):
		v = Vet{ID: uid, CreatedAt: now}
	case err != nil:
		return Vet{}, err
	}

	v.Name = strings.TrimSpace(in.Name)
	v.Specialization = strings.TrimSpace(in.Specialization)
	v.Phone = strings.TrimSpace(in.Phone)
	v.ServiceArea = strings.TrimSpace(in.ServiceArea)
	v.ConsultationFee = in.ConsultationFee
	v.UpdatedAt = now

	if err := s.repo.Upsert(ctx, v); err != nil {
		return Vet{}, err
	}
	return v, nil
}

// SetAvailability reemplaza la agenda semanal del veterinario autenticado.
// Requiere perfil previo.
func (s *Service) SetAvailability(ctx context.Context, actor auth.Claims, week scheduling.WeeklyAvailability) (Vet, error) {
	if actor.Role != auth.RoleVet {
		return Vet{}, ErrForbidden
	}
	v, err := s.GetByID(ctx, actor.UserID)
	if err != nil {
		return Vet{}, err
	}

	week = week.Normalize()
	if err := week.Validate(); err != nil {
		return Vet{}, err
	}

	v.Availability = week
	v.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, v); err != nil {
		return Vet{}, err
	}
	return v, nil
}

// RemoveProfile da de baja al veterinario autenticado. Antes de borrar el perfil cancela
// sus citas activas con cancelled_by=system; si alguna falla el perfil se conserva.
func (s *Service) RemoveProfile(ctx context.Context, actor auth.Claims) (cancelled int, err error) {
	if actor.Role != auth.RoleVet {
		return 0, ErrForbidden
	}
	v, err := s.GetByID(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}

	if s.bookings != nil {
		cancelled, err = s.bookings.CancelActiveForVet(ctx, v.ID, RemovalReason)
		if err != nil {
			return cancelled, err
		}
	}

	if err := s.repo.Delete(ctx, v.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return cancelled, ErrNotFound
		}
		return cancelled, err
	}
	return cancelled, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Vet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Vet{}, ErrInvalidInput
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Vet{}, ErrNotFound
		}
		return Vet{}, err
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Vet, error) {
	filter.Specialization = strings.TrimSpace(filter.Specialization)
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// Exists indica si hay un perfil de veterinario con ese id.
func (s *Service) Exists(ctx context.Context, vetID string) (bool, error) {
	_, err := s.GetByID(ctx, vetID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
		return false, nil
	}
	return false, err
}

// AvailableSlots lista los inicios libres del vet en la fecha para la duración pedida.
func (s *Service) AvailableSlots(ctx context.Context, vetID string, date time.Time, durationMinutes, stepMinutes int) ([]string, error) {
	if date.IsZero() {
		return nil, ErrInvalidInput
	}
	if durationMinutes == 0 {
		durationMinutes = scheduling.DefaultStepMinutes
	}
	if durationMinutes < MinSlotDuration || durationMinutes > MaxSlotDuration {
		return nil, ErrInvalidInput
	}
	if stepMinutes < 0 || stepMinutes > MaxSlotDuration {
		return nil, ErrInvalidInput
	}

	v, err := s.GetByID(ctx, vetID)
	if err != nil {
		return nil, err
	}

	var existing []scheduling.Booking
	if s.bookings != nil {
		existing, err = s.bookings.ActiveBookings(ctx, v.ID, date)
		if err != nil {
			return nil, err
		}
	}

	return s.cal.AvailableSlots(v.Availability, date, existing, durationMinutes, stepMinutes), nil
}
