package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/platform/dates"
)

type BabiesRepo struct {
	db *sql.DB
}

func NewBabiesRepo(db *sql.DB) *BabiesRepo {
	return &BabiesRepo{db: db}
}

func (r *BabiesRepo) Create(ctx context.Context, b babies.Baby) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO babies (
			id, owner_user_id,
			name, gender, birth_date,
			rotavirus_three_dose_brand,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		b.ID,
		b.OwnerUserID,
		b.Name,
		string(b.Gender),
		b.BirthDate,
		toNullBool(b.RotavirusThreeDoseBrand),
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

func (r *BabiesRepo) Update(ctx context.Context, b babies.Baby) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE babies
		SET
			name = $2,
			gender = $3,
			birth_date = $4,
			rotavirus_three_dose_brand = $5,
			updated_at = $6
		WHERE id = $1
	`,
		b.ID,
		b.Name,
		string(b.Gender),
		b.BirthDate,
		toNullBool(b.RotavirusThreeDoseBrand),
		b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return babies.ErrNotFound
	}
	return nil
}

func (r *BabiesRepo) GetByID(ctx context.Context, id string) (babies.Baby, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return babies.Baby{}, babies.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, owner_user_id,
			name, gender, birth_date,
			rotavirus_three_dose_brand,
			created_at, updated_at
		FROM babies
		WHERE id = $1
	`, id)

	b, err := scanBaby(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return babies.Baby{}, babies.ErrNotFound
		}
		return babies.Baby{}, err
	}
	return b, nil
}

func (r *BabiesRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]babies.Baby, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, owner_user_id,
			name, gender, birth_date,
			rotavirus_three_dose_brand,
			created_at, updated_at
		FROM babies
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]babies.Baby, 0)
	for rows.Next() {
		b, err := scanBaby(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBaby(s scanner) (babies.Baby, error) {
	var b babies.Baby
	var gender string
	var brand sql.NullBool
	if err := s.Scan(
		&b.ID,
		&b.OwnerUserID,
		&b.Name,
		&gender,
		&b.BirthDate,
		&brand,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return babies.Baby{}, err
	}

	b.Gender = babies.Gender(gender)
	// DATE llega como medianoche; normalizamos a UTC
	b.BirthDate = dates.DateOnly(b.BirthDate)
	if brand.Valid {
		v := brand.Bool
		b.RotavirusThreeDoseBrand = &v
	}
	return b, nil
}

func toNullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{Valid: false}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
