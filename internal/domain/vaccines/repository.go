package vaccines

import "context"

// Repository guarda el conjunto de dosis de cada bebé.
//   - LoadDoses devuelve slice vacío (no error) si el bebé aún no tiene esquema.
//   - SaveDoses reemplaza el conjunto completo.
//   - UpdateDose devuelve ErrNotFound si la dosis no existe.
//   - ListOutstanding devuelve las dosis no aplicadas de todos los bebés.
type Repository interface {
	LoadDoses(ctx context.Context, babyID string) ([]Dose, error)
	SaveDoses(ctx context.Context, babyID string, doses []Dose) error
	UpdateDose(ctx context.Context, d Dose) error
	ListOutstanding(ctx context.Context) ([]Dose, error)
}
