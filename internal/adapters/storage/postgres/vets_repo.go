package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"farm-vet-appointments/internal/domain/vets"
	"farm-vet-appointments/internal/scheduling"
)

type VetsRepo struct {
	db *sql.DB
}

func NewVetsRepo(db *sql.DB) *VetsRepo {
	return &VetsRepo{db: db}
}

const vetColumns = `
	id, name, specialization, phone, service_area,
	consultation_fee, availability,
	created_at, updated_at`

func (r *VetsRepo) Upsert(ctx context.Context, v vets.Vet) error {
	week := v.Availability
	if week == nil {
		week = scheduling.WeeklyAvailability{}
	}
	availability, err := json.Marshal(week)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO vets (`+vetColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			specialization = EXCLUDED.specialization,
			phone = EXCLUDED.phone,
			service_area = EXCLUDED.service_area,
			consultation_fee = EXCLUDED.consultation_fee,
			availability = EXCLUDED.availability,
			updated_at = EXCLUDED.updated_at
	`,
		v.ID,
		v.Name,
		v.Specialization,
		v.Phone,
		v.ServiceArea,
		toNullFloat(v.ConsultationFee),
		string(availability),
		v.CreatedAt,
		v.UpdatedAt,
	)
	return err
}

func (r *VetsRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return vets.Vet{}, notFound(vets.ErrNotFound)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+vetColumns+` FROM vets WHERE id = $1`, id)
	v, err := scanVet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return vets.Vet{}, notFound(vets.ErrNotFound)
		}
		return vets.Vet{}, err
	}
	return v, nil
}

func (r *VetsRepo) List(ctx context.Context, filter vets.ListFilter) ([]vets.Vet, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + vetColumns + ` FROM vets WHERE 1=1`)

	args := []any{}
	argN := 1

	if s := strings.TrimSpace(filter.Specialization); s != "" {
		sb.WriteString(fmt.Sprintf(" AND lower(specialization) = lower($%d)", argN))
		args = append(args, s)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	sb.WriteString(" ORDER BY name ASC, id ASC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vets.Vet, 0)
	for rows.Next() {
		v, err := scanVet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVet(row rowScanner) (vets.Vet, error) {
	var v vets.Vet
	var fee sql.NullFloat64
	var availability []byte
	if err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Specialization,
		&v.Phone,
		&v.ServiceArea,
		&fee,
		&availability,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return vets.Vet{}, err
	}
	v.ConsultationFee = fromNullFloat(fee)

	week := scheduling.WeeklyAvailability{}
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &week); err != nil {
			return vets.Vet{}, fmt.Errorf("decode availability for vet %s: %w", v.ID, err)
		}
	}
	v.Availability = week
	return v, nil
}

func (r *VetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vets WHERE id = $1`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound(vets.ErrNotFound)
	}
	return nil
}
