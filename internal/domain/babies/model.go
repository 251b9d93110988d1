package babies

import (
	"strings"
	"time"
)

// Gender define el sexo registrado en el perfil del bebé.
// @Enum female, male, intersex, unspecified
type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderIntersex    Gender = "intersex"
	GenderUnspecified Gender = "unspecified"
)

// genderInfo es la tabla cerrada de valores válidos; no hay rama "desconocido".
var genderInfo = map[Gender]struct {
	label string
}{
	GenderFemale:      {label: "Niña"},
	GenderMale:        {label: "Niño"},
	GenderIntersex:    {label: "Intersex"},
	GenderUnspecified: {label: "Sin especificar"},
}

// aliases heredados del onboarding de la app ("girl"/"boy").
var genderAliases = map[string]Gender{
	"girl": GenderFemale,
	"boy":  GenderMale,
}

// ParseGender normaliza el valor recibido. Vacío => unspecified.
func ParseGender(s string) (Gender, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return GenderUnspecified, nil
	}
	if g, ok := genderAliases[s]; ok {
		return g, nil
	}
	g := Gender(s)
	if !g.Valid() {
		return "", ErrInvalidInput
	}
	return g, nil
}

func (g Gender) Valid() bool {
	_, ok := genderInfo[g]
	return ok
}

func (g Gender) Label() string {
	return genderInfo[g].label
}

// Baby representa el perfil creado en el onboarding.
type Baby struct {
	ID          string
	OwnerUserID string

	Name   string
	Gender Gender

	// BirthDate es un día de calendario (00:00 UTC).
	BirthDate time.Time

	// RotavirusThreeDoseBrand indica si la marca aplicada requiere 3ra dosis.
	// nil = no se sabe; el calendario decide según la política configurada.
	RotavirusThreeDoseBrand *bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FirstName se usa en los textos de recordatorios.
func (b Baby) FirstName() string {
	parts := strings.Fields(b.Name)
	if len(parts) == 0 {
		return "tu bebé"
	}
	return parts[0]
}
