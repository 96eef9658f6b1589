package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"farm-vet-appointments/internal/domain/vets"
	"farm-vet-appointments/internal/scheduling"
)

type vetRepo struct {
	mu   sync.RWMutex
	byID map[string]vets.Vet
}

func NewVetRepo() vets.Repository {
	return &vetRepo{
		byID: make(map[string]vets.Vet),
	}
}

func (r *vetRepo) Upsert(ctx context.Context, v vets.Vet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" {
		return errors.New("vet id required")
	}
	v.Availability = copyWeek(v.Availability)
	r.byID[v.ID] = v
	return nil
}

func (r *vetRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[id]
	if !ok {
		return vets.Vet{}, notFound(vets.ErrNotFound)
	}
	v.Availability = copyWeek(v.Availability)
	return v, nil
}

func (r *vetRepo) List(ctx context.Context, filter vets.ListFilter) ([]vets.Vet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vets.Vet, 0)
	for _, v := range r.byID {
		if filter.Specialization != "" && !strings.EqualFold(v.Specialization, filter.Specialization) {
			continue
		}
		v.Availability = copyWeek(v.Availability)
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *vetRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return notFound(vets.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

// copyWeek evita que el caller mute el mapa guardado.
func copyWeek(w scheduling.WeeklyAvailability) scheduling.WeeklyAvailability {
	if w == nil {
		return nil
	}
	out := make(scheduling.WeeklyAvailability, len(w))
	for k, d := range w {
		out[k] = d
	}
	return out
}
