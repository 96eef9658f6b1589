package animals

import (
	"context"
	"errors"
)

// OwnerOf devuelve el farmer dueño del animal.
// found=false con err=nil cuando el animal no existe; los errores de storage se propagan.
func (s *Service) OwnerOf(ctx context.Context, animalID string) (owner string, found bool, err error) {
	a, err := s.GetByID(ctx, animalID)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return a.OwnerUserID, true, nil
}
