package redisdoc

import (
	"context"
	"errors"
	"sort"

	"childcare-vaccines/internal/domain/diary"
)

const (
	entryKeyPrefix    = "diary:entry:"
	babyEntriesPrefix  = "diary:baby:"
)

// DiaryRepo guarda cada registro como documento y un set de IDs por bebé.
// Los filtros se aplican en memoria con ListFilter.Match.
type DiaryRepo struct {
	c kv
}

func NewDiaryRepo(c kv) *DiaryRepo {
	return &DiaryRepo{c: c}
}

func (r *DiaryRepo) Create(ctx context.Context, e diary.Entry) error {
	if e.ID == "" {
		return errors.New("entry id required")
	}
	if err := setJSON(ctx, r.c, entryKeyPrefix+e.ID, e); err != nil {
		return err
	}
	return addMember(ctx, r.c, babyEntriesPrefix+e.BabyID, e.ID)
}

func (r *DiaryRepo) GetByID(ctx context.Context, id string) (diary.Entry, error) {
	var e diary.Entry
	if err := getJSON(ctx, r.c, entryKeyPrefix+id, &e); err != nil {
		if errors.Is(err, errMissing) {
			return diary.Entry{}, diary.ErrNotFound
		}
		return diary.Entry{}, err
	}
	return e, nil
}

func (r *DiaryRepo) ListByBaby(ctx context.Context, babyID string, filter diary.ListFilter) ([]diary.Entry, error) {
	ids, err := members(ctx, r.c, babyEntriesPrefix+babyID)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]diary.Entry, 0)
	for _, id := range ids {
		e, err := r.GetByID(ctx, id)
		if errors.Is(err, diary.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if filter.Match(e) {
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

func (r *DiaryRepo) Void(ctx context.Context, id string) error {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	e.Status = diary.StatusVoided
	return setJSON(ctx, r.c, entryKeyPrefix+id, e)
}
