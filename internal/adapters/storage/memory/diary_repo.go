package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"childcare-vaccines/internal/domain/diary"
)

type diaryRepo struct {
	mu   sync.RWMutex
	byID map[string]diary.Entry
}

func NewDiaryRepo() diary.Repository {
	return &diaryRepo{
		byID: make(map[string]diary.Entry),
	}
}

func (r *diaryRepo) Create(ctx context.Context, e diary.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("entry id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("entry already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *diaryRepo) GetByID(ctx context.Context, id string) (diary.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return diary.Entry{}, diary.ErrNotFound
	}
	return e, nil
}

func (r *diaryRepo) ListByBaby(ctx context.Context, babyID string, filter diary.ListFilter) ([]diary.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]diary.Entry, 0)
	for _, e := range r.byID {
		if e.BabyID == babyID && filter.Match(e) {
			out = append(out, e)
		}
	}

	// Más recientes primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *diaryRepo) Void(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return diary.ErrNotFound
	}
	e.Status = diary.StatusVoided
	r.byID[id] = e
	return nil
}
