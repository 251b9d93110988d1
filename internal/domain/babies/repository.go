package babies

import "context"

// Repository devuelve ErrNotFound cuando el bebé no existe.
type Repository interface {
	Create(ctx context.Context, b Baby) error
	Update(ctx context.Context, b Baby) error
	GetByID(ctx context.Context, id string) (Baby, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Baby, error)
}
