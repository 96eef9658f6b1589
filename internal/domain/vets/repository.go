package vets

import "context"

type Repository interface {
	// Upsert crea o reemplaza el perfil por ID.
	Upsert(ctx context.Context, v Vet) error
	// GetByID devuelve un error que cumple errors.Is(err, ErrNotFound) si no existe.
	GetByID(ctx context.Context, id string) (Vet, error)
	List(ctx context.Context, filter ListFilter) ([]Vet, error)
	Delete(ctx context.Context, id string) error
}

// ListFilter: Specialization compara sin distinguir mayúsculas.
type ListFilter struct {
	Specialization string
	Limit          int
}
