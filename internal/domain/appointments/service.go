package appointments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"farm-vet-appointments/internal/ports/auth"
	"farm-vet-appointments/internal/ports/eventbus"
	"farm-vet-appointments/internal/ports/locking"
	"farm-vet-appointments/internal/scheduling"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("farm-vet-appointments/appointments")

// AnimalLookup evita importar el paquete animals (rompe ciclos).
type AnimalLookup interface {
	OwnerOf(ctx context.Context, animalID string) (owner string, found bool, err error)
}

// VetLookup confirma que el id corresponde a un veterinario con perfil.
type VetLookup interface {
	Exists(ctx context.Context, vetID string) (bool, error)
}

type Options struct {
	Animals   AnimalLookup
	Vets      VetLookup
	Locker    locking.VetLocker
	Publisher eventbus.Publisher
	Calendar  *scheduling.Calendar
	Logger    *slog.Logger
}

type Service struct {
	repo    Repository
	animals AnimalLookup
	vets    VetLookup
	locker  locking.VetLocker
	bus     eventbus.Publisher
	cal     *scheduling.Calendar
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cal := opts.Calendar
	if cal == nil {
		cal = scheduling.NewCalendar(time.Local, logger)
	}
	return &Service{
		repo:    repo,
		animals: opts.Animals,
		vets:    opts.Vets,
		locker:  opts.Locker,
		bus:     opts.Publisher,
		cal:     cal,
		log:     logger,
		now:     time.Now,
	}
}

// Book crea una cita pending si el vet no tiene otra activa que se solape.
func (s *Service) Book(ctx context.Context, actor auth.Claims, req CreateRequest) (_ Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointments.Book")
	defer func() { endSpan(span, err) }()

	n, err := ResolveCreate(actor, req)
	if err != nil {
		return Appointment{}, err
	}

	span.SetAttributes(
		attribute.String("vet_id", n.VetID),
		attribute.String("scheduled_date", n.ScheduledDate.Format("2006-01-02")),
		attribute.String("scheduled_time", n.ScheduledTime),
	)

	if err := s.checkParties(ctx, n); err != nil {
		return Appointment{}, err
	}

	proposed, err := s.cal.Interval(n.ScheduledDate, n.ScheduledTime, n.Duration)
	if err != nil {
		return Appointment{}, err
	}

	unlock, err := s.lockVet(ctx, n.VetID)
	if err != nil {
		return Appointment{}, err
	}
	defer unlock()

	if err := s.ensureFree(ctx, n.VetID, n.ScheduledDate, proposed, ""); err != nil {
		return Appointment{}, err
	}

	now := s.now()
	a := Appointment{
		ID:              uuid.NewString(),
		FarmerID:        n.FarmerID,
		VetID:           n.VetID,
		AnimalID:        n.AnimalID,
		AnimalName:      n.AnimalName,
		ScheduledDate:   dateOnly(n.ScheduledDate),
		ScheduledTime:   n.ScheduledTime,
		Duration:        n.Duration,
		Type:            n.Type,
		Priority:        n.Priority,
		Status:          StatusPending,
		Symptoms:        n.Symptoms,
		Description:     n.Description,
		ConsultationFee: n.ConsultationFee,
		TravelFee:       n.TravelFee,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	Normalize(&a, now)

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.publish(ctx, eventbus.AppointmentCreated, a, actor.UserID)
	return a, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Claims, id string) (Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if _, ok := partyOf(actor, a); !ok {
		return Appointment{}, ErrForbidden
	}
	return a, nil
}

// List devuelve las citas del actor según su rol (granjero o veterinario).
func (s *Service) List(ctx context.Context, actor auth.Claims, filter ListFilter) ([]Appointment, error) {
	uid := strings.TrimSpace(actor.UserID)
	if uid == "" {
		return nil, ErrInvalidInput
	}

	filter.FarmerID, filter.VetID = "", ""
	switch actor.Role {
	case auth.RoleFarmer:
		filter.FarmerID = uid
	case auth.RoleVet:
		filter.VetID = uid
	default:
		return nil, ErrForbidden
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	return s.repo.List(ctx, filter)
}

// Transition aplica un cambio de estado pedido por el veterinario de la cita.
// Pasar a cancelled sigue las reglas de Cancel (misma ventana y registro de motivo),
// salvo que la cita ya esté cancelada: ahí es un no-op como cualquier mismo estado.
func (s *Service) Transition(ctx context.Context, actor auth.Claims, id string, to Status, notes string) (Appointment, error) {
	if !to.Valid() {
		return Appointment{}, ErrInvalidTransition
	}

	a, err := s.load(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	party, ok := partyOf(actor, a)
	if !ok {
		return Appointment{}, ErrForbidden
	}

	// Idempotente: mismo estado no altera timestamps ni persiste.
	if a.Status == to {
		return a, nil
	}
	if to == StatusCancelled {
		return s.cancelBy(ctx, actor, party, a, notes)
	}
	if party != auth.RoleVet {
		return Appointment{}, ErrForbidden
	}

	now := s.now()
	if err := a.Transition(to, now); err != nil {
		return Appointment{}, err
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		a.VetNotes = notes
	}
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.publish(ctx, eventbus.AppointmentStatusChanged, a, actor.UserID)
	return a, nil
}

// Cancel cancela la cita si falta más de CancelWindow y sigue pending/accepted.
func (s *Service) Cancel(ctx context.Context, actor auth.Claims, id, reason string) (Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	party, ok := partyOf(actor, a)
	if !ok {
		return Appointment{}, ErrForbidden
	}
	return s.cancelBy(ctx, actor, party, a, reason)
}

func (s *Service) cancelBy(ctx context.Context, actor auth.Claims, party auth.Role, a Appointment, reason string) (Appointment, error) {
	now := s.now()
	if err := a.CancelCheck(now, s.cal.Location()); err != nil {
		return Appointment{}, err
	}

	by := CancelledByFarmer
	if party == auth.RoleVet {
		by = CancelledByVet
	}
	if err := a.Cancel(by, strings.TrimSpace(reason), now); err != nil {
		return Appointment{}, err
	}
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.publish(ctx, eventbus.AppointmentCancelled, a, actor.UserID)
	return a, nil
}

// CancelAsSystem cancela sin ventana de elegibilidad (p.ej. baja del veterinario).
func (s *Service) CancelAsSystem(ctx context.Context, id, reason string) (Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return Appointment{}, err
	}

	now := s.now()
	if err := a.Cancel(CancelledBySystem, strings.TrimSpace(reason), now); err != nil {
		return Appointment{}, err
	}
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.publish(ctx, eventbus.AppointmentCancelled, a, "")
	return a, nil
}

// CancelActiveForVet cancela como system todas las citas activas del vet (baja del perfil).
// Recorre por páginas: las ya canceladas salen del filtro de activas.
func (s *Service) CancelActiveForVet(ctx context.Context, vetID, reason string) (int, error) {
	filter := ListFilter{VetID: strings.TrimSpace(vetID), Statuses: ActiveStatuses(), Limit: 200}
	if filter.VetID == "" {
		return 0, ErrInvalidInput
	}

	cancelled := 0
	for {
		page, err := s.repo.List(ctx, filter)
		if err != nil {
			return cancelled, err
		}
		progressed := false
		for _, a := range page {
			if !a.Status.IsActive() {
				continue
			}
			if _, err := s.CancelAsSystem(ctx, a.ID, reason); err != nil {
				return cancelled, err
			}
			cancelled++
			progressed = true
		}
		if !progressed || len(page) < filter.Limit {
			return cancelled, nil
		}
	}
}

type RescheduleInput struct {
	ScheduledDate time.Time
	ScheduledTime string
	Duration      int // 0 = mantener
}

// Reschedule mueve la cita a otra fecha/hora si falta más de RescheduleWindow.
// El estado se mantiene; el chequeo de solapamiento excluye la propia cita.
func (s *Service) Reschedule(ctx context.Context, actor auth.Claims, id string, in RescheduleInput) (_ Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointments.Reschedule")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("appointment_id", id))

	if in.ScheduledDate.IsZero() {
		return Appointment{}, ErrInvalidInput
	}
	clock, err := scheduling.CanonicalClock(in.ScheduledTime)
	if err != nil {
		return Appointment{}, ErrInvalidTimeFormat
	}
	in.ScheduledTime = clock

	a, err := s.load(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if _, ok := partyOf(actor, a); !ok {
		return Appointment{}, ErrForbidden
	}

	now := s.now()
	if err := a.RescheduleCheck(now, s.cal.Location()); err != nil {
		return Appointment{}, err
	}

	duration := in.Duration
	if duration == 0 {
		duration = a.Duration
	}
	if err := ValidateDuration(duration); err != nil {
		return Appointment{}, err
	}

	proposed, err := s.cal.Interval(in.ScheduledDate, in.ScheduledTime, duration)
	if err != nil {
		return Appointment{}, err
	}

	unlock, err := s.lockVet(ctx, a.VetID)
	if err != nil {
		return Appointment{}, err
	}
	defer unlock()

	if err := s.ensureFree(ctx, a.VetID, in.ScheduledDate, proposed, a.ID); err != nil {
		return Appointment{}, err
	}

	a.ScheduledDate = dateOnly(in.ScheduledDate)
	a.ScheduledTime = in.ScheduledTime
	a.Duration = duration
	a.UpdatedAt = now
	Normalize(&a, now)

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.publish(ctx, eventbus.AppointmentRescheduled, a, actor.UserID)
	return a, nil
}

// DetailsPatch: nil = no tocar.
type DetailsPatch struct {
	Type        *Type
	Priority    *Priority
	Description *string

	// Solo veterinario
	Diagnosis       *string
	Treatment       *string
	Prescriptions   *[]Prescription
	VetNotes        *string
	ConsultationFee *float64
	TravelFee       *float64

	// Solo granjero
	FarmerNotes *string
}

func (p DetailsPatch) touchesVetFields() bool {
	return p.Diagnosis != nil || p.Treatment != nil || p.Prescriptions != nil ||
		p.VetNotes != nil || p.ConsultationFee != nil || p.TravelFee != nil
}

// UpdateDetails aplica un PATCH de campos clínicos/clasificación y normaliza.
func (s *Service) UpdateDetails(ctx context.Context, actor auth.Claims, id string, patch DetailsPatch) (Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	party, ok := partyOf(actor, a)
	if !ok {
		return Appointment{}, ErrForbidden
	}
	if patch.touchesVetFields() && party != auth.RoleVet {
		return Appointment{}, ErrForbidden
	}
	if patch.FarmerNotes != nil && party != auth.RoleFarmer {
		return Appointment{}, ErrForbidden
	}

	if patch.Type != nil {
		if !patch.Type.Valid() {
			return Appointment{}, ErrInvalidInput
		}
		a.Type = *patch.Type
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return Appointment{}, ErrInvalidInput
		}
		a.Priority = *patch.Priority
	}
	if negative(patch.ConsultationFee) || negative(patch.TravelFee) {
		return Appointment{}, ErrInvalidInput
	}

	setString(&a.Description, patch.Description)
	setString(&a.Diagnosis, patch.Diagnosis)
	setString(&a.Treatment, patch.Treatment)
	setString(&a.VetNotes, patch.VetNotes)
	setString(&a.FarmerNotes, patch.FarmerNotes)
	if patch.Prescriptions != nil {
		a.Prescriptions = append([]Prescription(nil), (*patch.Prescriptions)...)
	}
	if patch.ConsultationFee != nil {
		v := *patch.ConsultationFee
		a.ConsultationFee = &v
	}
	if patch.TravelFee != nil {
		v := *patch.TravelFee
		a.TravelFee = &v
	}

	now := s.now()
	a.UpdatedAt = now
	Normalize(&a, now)

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Delete borra la cita sin importar su estado.
func (s *Service) Delete(ctx context.Context, actor auth.Claims, id string) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, ok := partyOf(actor, a); !ok {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return err
	}

	s.publish(ctx, eventbus.AppointmentDeleted, a, actor.UserID)
	return nil
}

// ActiveBookings expone las citas activas del vet en la fecha como entrada del enumerador de slots.
func (s *Service) ActiveBookings(ctx context.Context, vetID string, date time.Time) ([]scheduling.Booking, error) {
	items, err := s.repo.ListActiveByVetAndDate(ctx, vetID, dateOnly(date))
	if err != nil {
		return nil, err
	}
	return toBookings(items), nil
}

func (s *Service) load(ctx context.Context, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrInvalidInput
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Appointment{}, ErrNotFound
		}
		return Appointment{}, err
	}
	return a, nil
}

func (s *Service) checkParties(ctx context.Context, n NewAppointment) error {
	if s.vets != nil {
		ok, err := s.vets.Exists(ctx, n.VetID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidInput
		}
	}
	if n.AnimalID != "" && s.animals != nil {
		owner, found, err := s.animals.OwnerOf(ctx, n.AnimalID)
		if err != nil {
			return err
		}
		if !found || owner != n.FarmerID {
			return ErrInvalidInput
		}
	}
	return nil
}

func (s *Service) ensureFree(ctx context.Context, vetID string, date time.Time, proposed scheduling.Interval, excludeID string) error {
	existing, err := s.repo.ListActiveByVetAndDate(ctx, vetID, dateOnly(date))
	if err != nil {
		return err
	}
	if s.cal.HasConflict(toBookings(existing), proposed, excludeID) {
		return ErrSchedulingConflict
	}
	return nil
}

func (s *Service) lockVet(ctx context.Context, vetID string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	unlock, err := s.locker.Lock(ctx, vetID)
	if err != nil {
		if errors.Is(err, locking.ErrLockUnavailable) {
			return nil, err
		}
		return nil, errors.Join(locking.ErrLockUnavailable, err)
	}
	return unlock, nil
}

func (s *Service) publish(ctx context.Context, typ eventbus.EventType, a Appointment, actorID string) {
	if s.bus == nil {
		return
	}
	e := eventbus.Event{
		ID:            uuid.NewString(),
		Type:          typ,
		AppointmentID: a.ID,
		VetID:         a.VetID,
		FarmerID:      a.FarmerID,
		Status:        string(a.Status),
		ScheduledDate: a.ScheduledDate.Format("2006-01-02"),
		ScheduledTime: a.ScheduledTime,
		ActorID:       actorID,
		OccurredAt:    s.now().UTC(),
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.log.Error("publish appointment event failed",
			"event_type", string(typ),
			"appointment_id", a.ID,
			"err", err,
		)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// partyOf devuelve el rol que el actor ocupa en la cita (farmer o vet).
func partyOf(actor auth.Claims, a Appointment) (auth.Role, bool) {
	uid := strings.TrimSpace(actor.UserID)
	switch {
	case uid == "":
		return "", false
	case uid == a.VetID:
		return auth.RoleVet, true
	case uid == a.FarmerID:
		return auth.RoleFarmer, true
	}
	return "", false
}

func toBookings(items []Appointment) []scheduling.Booking {
	out := make([]scheduling.Booking, 0, len(items))
	for _, a := range items {
		if !a.Status.IsActive() {
			continue
		}
		out = append(out, scheduling.Booking{
			ID:              a.ID,
			VetID:           a.VetID,
			Date:            a.ScheduledDate,
			Time:            a.ScheduledTime,
			DurationMinutes: a.Duration,
		})
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setString(dst *string, v *string) {
	if v == nil {
		return
	}
	*dst = strings.TrimSpace(*v)
}
