package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"farm-vet-appointments/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentColumns = `
	id, farmer_id, vet_id,
	animal_id, animal_name,
	scheduled_date, scheduled_time, duration,
	appointment_type, priority, status, is_emergency,
	symptoms, description, diagnosis, treatment, prescriptions,
	vet_notes, farmer_notes,
	consultation_fee, travel_fee, total_fee,
	cancelled_by, cancellation_reason,
	accepted_at, rejected_at, completed_at, cancelled_at,
	created_at, updated_at`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	args, err := appointmentArgs(a)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			$11,$12,$13,$14,$15,$16,$17::jsonb,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27,$28,$29,$30
		)
	`, args...)
	if isUniqueViolation(err) {
		return appointments.ErrSchedulingConflict
	}
	return err
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	args, err := appointmentArgs(a)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			farmer_id = $2,
			vet_id = $3,
			animal_id = $4,
			animal_name = $5,
			scheduled_date = $6,
			scheduled_time = $7,
			duration = $8,
			appointment_type = $9,
			priority = $10,
			status = $11,
			is_emergency = $12,
			symptoms = $13,
			description = $14,
			diagnosis = $15,
			treatment = $16,
			prescriptions = $17::jsonb,
			vet_notes = $18,
			farmer_notes = $19,
			consultation_fee = $20,
			travel_fee = $21,
			total_fee = $22,
			cancelled_by = $23,
			cancellation_reason = $24,
			accepted_at = $25,
			rejected_at = $26,
			completed_at = $27,
			cancelled_at = $28,
			created_at = $29,
			updated_at = $30
		WHERE id = $1
	`, args...)
	if isUniqueViolation(err) {
		return appointments.ErrSchedulingConflict
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound(appointments.ErrNotFound)
	}
	return nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, notFound(appointments.ErrNotFound)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return appointments.Appointment{}, notFound(appointments.ErrNotFound)
		}
		return appointments.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound(appointments.ErrNotFound)
	}
	return nil
}

func (r *AppointmentsRepo) ListActiveByVetAndDate(ctx context.Context, vetID string, date time.Time) ([]appointments.Appointment, error) {
	active := appointments.ActiveStatuses()
	args := []any{strings.TrimSpace(vetID), calendarDate(date)}
	placeholders := make([]string, 0, len(active))
	for i, s := range active {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+3))
		args = append(args, string(s))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE vet_id = $1
		  AND scheduled_date = $2
		  AND status IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY scheduled_time ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentsRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.Appointment, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`)

	args := []any{}
	argN := 1

	if filter.FarmerID != "" {
		sb.WriteString(fmt.Sprintf(" AND farmer_id = $%d", argN))
		args = append(args, filter.FarmerID)
		argN++
	}
	if filter.VetID != "" {
		sb.WriteString(fmt.Sprintf(" AND vet_id = $%d", argN))
		args = append(args, filter.VetID)
		argN++
	}

	// status filter
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(s))
			argN++
		}
		sb.WriteString(" AND status IN (" + strings.Join(placeholders, ",") + ")")
	}

	// from/to sobre scheduled_date
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND scheduled_date >= $%d", argN))
		args = append(args, calendarDate(*filter.From))
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND scheduled_date <= $%d", argN))
		args = append(args, calendarDate(*filter.To))
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY scheduled_date ASC, scheduled_time ASC, created_at ASC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func appointmentArgs(a appointments.Appointment) ([]any, error) {
	prescriptions := a.Prescriptions
	if prescriptions == nil {
		prescriptions = []appointments.Prescription{}
	}
	rx, err := json.Marshal(prescriptions)
	if err != nil {
		return nil, err
	}

	return []any{
		a.ID,
		a.FarmerID,
		a.VetID,
		a.AnimalID,
		a.AnimalName,
		calendarDate(a.ScheduledDate),
		a.ScheduledTime,
		a.Duration,
		string(a.Type),
		string(a.Priority),
		string(a.Status),
		a.IsEmergency,
		a.Symptoms,
		a.Description,
		a.Diagnosis,
		a.Treatment,
		string(rx),
		a.VetNotes,
		a.FarmerNotes,
		toNullFloat(a.ConsultationFee),
		toNullFloat(a.TravelFee),
		toNullFloat(a.TotalFee),
		string(a.CancelledBy),
		a.CancellationReason,
		toNullTime(a.AcceptedAt),
		toNullTime(a.RejectedAt),
		toNullTime(a.CompletedAt),
		toNullTime(a.CancelledAt),
		a.CreatedAt,
		a.UpdatedAt,
	}, nil
}

func collectAppointments(rows *sql.Rows) ([]appointments.Appointment, error) {
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var typ, priority, status, cancelledBy string
	var rx []byte
	var consultation, travel, total sql.NullFloat64
	var acceptedAt, rejectedAt, completedAt, cancelledAt sql.NullTime

	if err := row.Scan(
		&a.ID,
		&a.FarmerID,
		&a.VetID,
		&a.AnimalID,
		&a.AnimalName,
		&a.ScheduledDate,
		&a.ScheduledTime,
		&a.Duration,
		&typ,
		&priority,
		&status,
		&a.IsEmergency,
		&a.Symptoms,
		&a.Description,
		&a.Diagnosis,
		&a.Treatment,
		&rx,
		&a.VetNotes,
		&a.FarmerNotes,
		&consultation,
		&travel,
		&total,
		&cancelledBy,
		&a.CancellationReason,
		&acceptedAt,
		&rejectedAt,
		&completedAt,
		&cancelledAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return appointments.Appointment{}, err
	}

	a.Type = appointments.Type(typ)
	a.Priority = appointments.Priority(priority)
	a.Status = appointments.Status(status)
	a.CancelledBy = appointments.CancelledBy(cancelledBy)
	a.ScheduledDate = calendarDate(a.ScheduledDate)
	a.ConsultationFee = fromNullFloat(consultation)
	a.TravelFee = fromNullFloat(travel)
	a.TotalFee = fromNullFloat(total)
	a.AcceptedAt = fromNullTime(acceptedAt)
	a.RejectedAt = fromNullTime(rejectedAt)
	a.CompletedAt = fromNullTime(completedAt)
	a.CancelledAt = fromNullTime(cancelledAt)

	if len(rx) > 0 {
		if err := json.Unmarshal(rx, &a.Prescriptions); err != nil {
			return appointments.Appointment{}, fmt.Errorf("decode prescriptions for appointment %s: %w", a.ID, err)
		}
	}
	return a, nil
}

// calendarDate normaliza a medianoche UTC para la columna DATE.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
