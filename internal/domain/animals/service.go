package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("animal not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name      string
	TagNumber string
	Species   string
	Breed     string
	Sex       string
	BirthDate *time.Time
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Animal, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" && strings.TrimSpace(in.TagNumber) == "" {
		return Animal{}, ErrInvalidInput
	}

	species := Species(strings.ToLower(strings.TrimSpace(in.Species)))
	if !species.Valid() {
		return Animal{}, ErrInvalidInput
	}
	sex := Sex(strings.ToLower(strings.TrimSpace(in.Sex)))
	if sex == "" {
		sex = SexUnknown
	}
	if !sex.Valid() {
		return Animal{}, ErrInvalidInput
	}

	now := s.now()
	a := Animal{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		TagNumber:   strings.TrimSpace(in.TagNumber),
		Species:     species,
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         sex,
		BirthDate:   in.BirthDate,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// GetByID no aplica permisos; el handler decide (solo el dueño).
func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Animal{}, ErrNotFound
		}
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// PatchBirthDate distingue "no enviado" de null (limpiar).
type PatchBirthDate struct {
	Present bool
	Value   *time.Time
}

// UpdateProfileInput: nil = no tocar.
type UpdateProfileInput struct {
	Name      *string
	TagNumber *string
	Species   *string
	Breed     *string
	Sex       *string
	BirthDate PatchBirthDate
	Notes     *string
}

// UpdateProfile aplica un PATCH; solo el dueño puede editar.
func (s *Service) UpdateProfile(ctx context.Context, animalID, actorUserID string, in UpdateProfileInput) (Animal, error) {
	a, err := s.GetByID(ctx, animalID)
	if err != nil {
		return Animal{}, err
	}
	if a.OwnerUserID != strings.TrimSpace(actorUserID) {
		return Animal{}, ErrForbidden
	}

	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.TagNumber != nil {
		a.TagNumber = strings.TrimSpace(*in.TagNumber)
	}
	if a.Name == "" && a.TagNumber == "" {
		return Animal{}, ErrInvalidInput
	}
	if in.Species != nil {
		sp := Species(strings.ToLower(strings.TrimSpace(*in.Species)))
		if !sp.Valid() {
			return Animal{}, ErrInvalidInput
		}
		a.Species = sp
	}
	if in.Sex != nil {
		sx := Sex(strings.ToLower(strings.TrimSpace(*in.Sex)))
		if !sx.Valid() {
			return Animal{}, ErrInvalidInput
		}
		a.Sex = sx
	}
	if in.Breed != nil {
		a.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.BirthDate.Present {
		a.BirthDate = in.BirthDate.Value
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}
