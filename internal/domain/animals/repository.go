package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	// GetByID devuelve un error que cumple errors.Is(err, ErrNotFound) si no existe.
	GetByID(ctx context.Context, id string) (Animal, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error)
}
