package memory

import (
	"context"
	"sort"
	"sync"

	"childcare-vaccines/internal/domain/vaccines"
)

// doseRepo guarda el esquema de cada bebé en orden; todo se copia al entrar y salir.
type doseRepo struct {
	mu     sync.RWMutex
	byBaby map[string][]vaccines.Dose
}

func NewDoseRepo() vaccines.Repository {
	return &doseRepo{
		byBaby: make(map[string][]vaccines.Dose),
	}
}

func (r *doseRepo) LoadDoses(ctx context.Context, babyID string) ([]vaccines.Dose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneDoses(r.byBaby[babyID]), nil
}

func (r *doseRepo) SaveDoses(ctx context.Context, babyID string, doses []vaccines.Dose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byBaby[babyID] = cloneDoses(doses)
	return nil
}

func (r *doseRepo) UpdateDose(ctx context.Context, d vaccines.Dose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byBaby[d.BabyID]
	for i := range list {
		if list[i].ID == d.ID {
			list[i] = d.Clone()
			return nil
		}
	}
	return vaccines.ErrNotFound
}

func (r *doseRepo) ListOutstanding(ctx context.Context) ([]vaccines.Dose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vaccines.Dose, 0)
	for _, list := range r.byBaby {
		for _, d := range list {
			if !d.IsApplied {
				out = append(out, d.Clone())
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecommendedDate.Before(out[j].RecommendedDate)
	})
	return out, nil
}

func cloneDoses(in []vaccines.Dose) []vaccines.Dose {
	out := make([]vaccines.Dose, 0, len(in))
	for _, d := range in {
		out = append(out, d.Clone())
	}
	return out
}
