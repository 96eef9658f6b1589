package appointments

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a Appointment) error
	Update(ctx context.Context, a Appointment) error
	// GetByID, Update y Delete devuelven un error que cumple errors.Is(err, ErrNotFound) si no existe.
	GetByID(ctx context.Context, id string) (Appointment, error)
	Delete(ctx context.Context, id string) error

	// ListActiveByVetAndDate: citas pending/accepted/in-progress del vet en esa fecha de calendario.
	ListActiveByVetAndDate(ctx context.Context, vetID string, date time.Time) ([]Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]Appointment, error)
}

// ListFilter: FarmerID o VetID acotan la parte; From/To comparan contra scheduled_date (inclusive).
type ListFilter struct {
	FarmerID string
	VetID    string
	Statuses []Status
	From     *time.Time
	To       *time.Time
	Limit    int
}
