package redisdoc

import (
	"context"
	"errors"
	"sort"
	"time"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/platform/dates"
)

const (
	babyKeyPrefix  = "babies:"
	ownerKeyPrefix = "babies:owner:"
)

type babyDoc struct {
	ID                      string        `json:"id"`
	OwnerUserID             string        `json:"owner_user_id"`
	Name                    string        `json:"name"`
	Gender                  babies.Gender `json:"gender"`
	BirthDate               string        `json:"birth_date"`
	RotavirusThreeDoseBrand *bool         `json:"rotavirus_three_dose_brand,omitempty"`
	CreatedAt               time.Time     `json:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at"`
}

type BabiesRepo struct {
	c kv
}

func NewBabiesRepo(c kv) *BabiesRepo {
	return &BabiesRepo{c: c}
}

func (r *BabiesRepo) Create(ctx context.Context, b babies.Baby) error {
	if b.ID == "" {
		return errors.New("baby id required")
	}
	if err := setJSON(ctx, r.c, babyKeyPrefix+b.ID, toBabyDoc(b)); err != nil {
		return err
	}
	return addMember(ctx, r.c, ownerKeyPrefix+b.OwnerUserID, b.ID)
}

func (r *BabiesRepo) Update(ctx context.Context, b babies.Baby) error {
	if _, err := r.GetByID(ctx, b.ID); err != nil {
		return err
	}
	return setJSON(ctx, r.c, babyKeyPrefix+b.ID, toBabyDoc(b))
}

func (r *BabiesRepo) GetByID(ctx context.Context, id string) (babies.Baby, error) {
	var doc babyDoc
	if err := getJSON(ctx, r.c, babyKeyPrefix+id, &doc); err != nil {
		if errors.Is(err, errMissing) {
			return babies.Baby{}, babies.ErrNotFound
		}
		return babies.Baby{}, err
	}
	return fromBabyDoc(doc)
}

func (r *BabiesRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]babies.Baby, error) {
	ids, err := members(ctx, r.c, ownerKeyPrefix+ownerUserID)
	if err != nil {
		return nil, err
	}

	out := make([]babies.Baby, 0, len(ids))
	for _, id := range ids {
		b, err := r.GetByID(ctx, id)
		if errors.Is(err, babies.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func toBabyDoc(b babies.Baby) babyDoc {
	return babyDoc{
		ID:                      b.ID,
		OwnerUserID:             b.OwnerUserID,
		Name:                    b.Name,
		Gender:                  b.Gender,
		BirthDate:               dates.Format(b.BirthDate),
		RotavirusThreeDoseBrand: b.RotavirusThreeDoseBrand,
		CreatedAt:               b.CreatedAt,
		UpdatedAt:               b.UpdatedAt,
	}
}

func fromBabyDoc(d babyDoc) (babies.Baby, error) {
	birth, err := dates.Parse(d.BirthDate)
	if err != nil {
		return babies.Baby{}, err
	}
	return babies.Baby{
		ID:                      d.ID,
		OwnerUserID:             d.OwnerUserID,
		Name:                    d.Name,
		Gender:                  d.Gender,
		BirthDate:               birth,
		RotavirusThreeDoseBrand: d.RotavirusThreeDoseBrand,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}, nil
}
