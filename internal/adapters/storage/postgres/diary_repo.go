package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"childcare-vaccines/internal/domain/diary"
)

type DiaryRepo struct {
	db *sql.DB
}

func NewDiaryRepo(db *sql.DB) *DiaryRepo {
	return &DiaryRepo{db: db}
}

func (r *DiaryRepo) Create(ctx context.Context, e diary.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO diary_entries (
			id, baby_id,
			kind, code,
			occurred_at, recorded_at,
			value, unit, notes,
			author_user_id, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		e.ID,
		e.BabyID,
		string(e.Kind),
		string(e.Code),
		e.OccurredAt,
		e.RecordedAt,
		toNullFloat(e.Value),
		e.Unit,
		e.Notes,
		e.AuthorUserID,
		string(e.Status),
	)
	return err
}

func (r *DiaryRepo) GetByID(ctx context.Context, id string) (diary.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return diary.Entry{}, diary.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, baby_id,
			kind, code,
			occurred_at, recorded_at,
			value, unit, notes,
			author_user_id, status
		FROM diary_entries
		WHERE id = $1
	`, id)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return diary.Entry{}, diary.ErrNotFound
		}
		return diary.Entry{}, err
	}
	return e, nil
}

func (r *DiaryRepo) ListByBaby(ctx context.Context, babyID string, filter diary.ListFilter) ([]diary.Entry, error) {
	babyID = strings.TrimSpace(babyID)
	if babyID == "" {
		return nil, nil
	}

	// Base query
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, baby_id,
			kind, code,
			occurred_at, recorded_at,
			value, unit, notes,
			author_user_id, status
		FROM diary_entries
		WHERE baby_id = $1
	`)

	args := []any{babyID}
	argN := 2

	if !filter.IncludeVoided {
		sb.WriteString(" AND status <> 'voided'")
	}

	if filter.Kind != "" {
		sb.WriteString(fmt.Sprintf(" AND kind = $%d", argN))
		args = append(args, string(filter.Kind))
		argN++
	}

	// codes filter
	if len(filter.Codes) > 0 {
		placeholders := make([]string, 0, len(filter.Codes))
		for _, c := range filter.Codes {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(c))
			argN++
		}
		sb.WriteString(" AND code IN (" + strings.Join(placeholders, ",") + ")")
	}

	// from/to
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY occurred_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]diary.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *DiaryRepo) Void(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return diary.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE diary_entries
		SET status = 'voided'
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return diary.ErrNotFound
	}
	return nil
}

func scanEntry(s scanner) (diary.Entry, error) {
	var e diary.Entry
	var kind, code, status string
	var value sql.NullFloat64
	if err := s.Scan(
		&e.ID,
		&e.BabyID,
		&kind,
		&code,
		&e.OccurredAt,
		&e.RecordedAt,
		&value,
		&e.Unit,
		&e.Notes,
		&e.AuthorUserID,
		&status,
	); err != nil {
		return diary.Entry{}, err
	}

	e.Kind = diary.Kind(kind)
	e.Code = diary.Code(code)
	e.Status = diary.Status(status)
	if value.Valid {
		v := value.Float64
		e.Value = &v
	}
	return e, nil
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
