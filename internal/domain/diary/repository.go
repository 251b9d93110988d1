package diary

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e Entry) error
	GetByID(ctx context.Context, id string) (Entry, error)
	ListByBaby(ctx context.Context, babyID string, filter ListFilter) ([]Entry, error)
	Void(ctx context.Context, id string) error
}

// ListFilter: campos vacíos no filtran. Los anulados solo salen con IncludeVoided.
type ListFilter struct {
	Kind          Kind
	Codes         []Code
	From          *time.Time
	To            *time.Time
	IncludeVoided bool
	Limit         int
}

// Match aplica el filtro en memoria (lo usan el repo en memoria y el de redis).
func (f ListFilter) Match(e Entry) bool {
	if !f.IncludeVoided && e.Status == StatusVoided {
		return false
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if len(f.Codes) > 0 {
		found := false
		for _, c := range f.Codes {
			if c == e.Code {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && e.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.OccurredAt.After(*f.To) {
		return false
	}
	return true
}
