package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"childcare-vaccines/internal/domain/babies"
)

type babyRepo struct {
	mu   sync.RWMutex
	byID map[string]babies.Baby
}

func NewBabyRepo() babies.Repository {
	return &babyRepo{
		byID: make(map[string]babies.Baby),
	}
}

func (r *babyRepo) Create(ctx context.Context, b babies.Baby) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(b.ID) == "" {
		return errors.New("baby id required")
	}
	if _, exists := r.byID[b.ID]; exists {
		return errors.New("baby already exists")
	}
	r.byID[b.ID] = copyBaby(b)
	return nil
}

func (r *babyRepo) Update(ctx context.Context, b babies.Baby) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[b.ID]; !exists {
		return babies.ErrNotFound
	}
	r.byID[b.ID] = copyBaby(b)
	return nil
}

func (r *babyRepo) GetByID(ctx context.Context, id string) (babies.Baby, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return babies.Baby{}, babies.ErrNotFound
	}
	return copyBaby(b), nil
}

func (r *babyRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]babies.Baby, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]babies.Baby, 0)
	for _, b := range r.byID {
		if b.OwnerUserID == ownerUserID {
			out = append(out, copyBaby(b))
		}
	}

	// Orden estable por created_at asc
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func copyBaby(b babies.Baby) babies.Baby {
	if b.RotavirusThreeDoseBrand != nil {
		v := *b.RotavirusThreeDoseBrand
		b.RotavirusThreeDoseBrand = &v
	}
	return b
}
