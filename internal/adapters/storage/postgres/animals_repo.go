package postgres

import (
	"context"
	"database/sql"
	"strings"

	"farm-vet-appointments/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, owner_user_id,
	name, tag_number, species, breed, sex,
	birth_date, notes,
	created_at, updated_at`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		a.ID,
		a.OwnerUserID,
		a.Name,
		a.TagNumber,
		string(a.Species),
		a.Breed,
		string(a.Sex),
		toNullTime(a.BirthDate),
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			name = $2,
			tag_number = $3,
			species = $4,
			breed = $5,
			sex = $6,
			birth_date = $7,
			notes = $8,
			updated_at = $9
		WHERE id = $1
	`,
		a.ID,
		a.Name,
		a.TagNumber,
		string(a.Species),
		a.Breed,
		string(a.Sex),
		toNullTime(a.BirthDate),
		a.Notes,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound(animals.ErrNotFound)
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, notFound(animals.ErrNotFound)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1`, id)
	a, err := scanAnimal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, notFound(animals.ErrNotFound)
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]animals.Animal, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var species, sex string
	var bd sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.OwnerUserID,
		&a.Name,
		&a.TagNumber,
		&species,
		&a.Breed,
		&sex,
		&bd,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}
	a.Species = animals.Species(species)
	a.Sex = animals.Sex(sex)
	// birth_date es DATE; pgx lo entrega como medianoche UTC
	a.BirthDate = fromNullTime(bd)
	return a, nil
}
