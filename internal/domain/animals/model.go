package animals

import "time"

// Species define las especies soportadas.
// @Enum cattle, goat, sheep, poultry, pig, horse, dog, cat, other
type Species string

const (
	SpeciesCattle  Species = "cattle"
	SpeciesGoat    Species = "goat"
	SpeciesSheep   Species = "sheep"
	SpeciesPoultry Species = "poultry"
	SpeciesPig     Species = "pig"
	SpeciesHorse   Species = "horse"
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesOther   Species = "other"
)

func (s Species) Valid() bool {
	switch s {
	case SpeciesCattle, SpeciesGoat, SpeciesSheep, SpeciesPoultry, SpeciesPig,
		SpeciesHorse, SpeciesDog, SpeciesCat, SpeciesOther:
		return true
	}
	return false
}

// Sex define el sexo del animal.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale || s == SexUnknown
}

// Animal es un animal registrado por un granjero.
type Animal struct {
	ID          string
	OwnerUserID string

	Name      string
	TagNumber string // caravana / arete
	Species   Species
	Breed     string
	Sex       Sex

	BirthDate *time.Time
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}
