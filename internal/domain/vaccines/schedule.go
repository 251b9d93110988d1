package vaccines

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/platform/dates"

	"github.com/google/uuid"
)

// RotavirusPolicy decide si se agrega la 3ra dosis de rotavirus.
type RotavirusPolicy string

const (
	// RotavirusByAge: se incluye si el bebé tiene 6 meses o menos al generar.
	RotavirusByAge  RotavirusPolicy = "by_age"
	RotavirusAlways RotavirusPolicy = "always"
	RotavirusNever  RotavirusPolicy = "never"
)

func ParseRotavirusPolicy(s string) (RotavirusPolicy, error) {
	switch p := RotavirusPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return RotavirusByAge, nil
	case RotavirusByAge, RotavirusAlways, RotavirusNever:
		return p, nil
	default:
		return "", fmt.Errorf("unknown rotavirus policy %q", s)
	}
}

type GenerateOptions struct {
	// Now solo se usa con RotavirusByAge.
	Now       time.Time
	Rotavirus RotavirusPolicy
}

// doseNamespace fija los IDs: mismo bebé + mismo slot => mismo ID de dosis.
var doseNamespace = uuid.MustParse("6f1c0a52-1d0e-4c39-9a57-7b1e4c2d8f10")

// DoseID es estable entre regeneraciones, así los IDs de recordatorios también.
func DoseID(babyID, slot string) string {
	return uuid.NewSHA1(doseNamespace, []byte(babyID+"|"+slot)).String()
}

// Generate produce el esquema completo del bebé. Es pura: no hace I/O.
// Sin fecha de nacimiento devuelve una lista vacía.
func Generate(b babies.Baby, opts GenerateOptions) []Dose {
	if b.BirthDate.IsZero() {
		return []Dose{}
	}
	birth := dates.DateOnly(b.BirthDate)
	withThird := includeRotavirusThird(b, birth, opts)

	out := make([]Dose, 0, len(catalog))
	for _, e := range catalog {
		if e.rotavirusThird && !withThird {
			continue
		}
		out = append(out, Dose{
			ID:              DoseID(b.ID, e.key),
			BabyID:          b.ID,
			Vaccine:         e.vaccine,
			Name:            e.name,
			Description:     e.description,
			AgeInMonths:     e.ageInMonths,
			RecommendedDate: AddMonths(birth, e.ageInMonths),
			Optional:        e.optional,
		})
	}

	// por edad; empates en orden de catálogo
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AgeInMonths < out[j].AgeInMonths
	})
	return out
}

func includeRotavirusThird(b babies.Baby, birth time.Time, opts GenerateOptions) bool {
	if b.RotavirusThreeDoseBrand != nil {
		return *b.RotavirusThreeDoseBrand
	}
	switch opts.Rotavirus {
	case RotavirusAlways:
		return true
	case RotavirusNever:
		return false
	default:
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		return MonthsBetween(birth, now) <= 6
	}
}
