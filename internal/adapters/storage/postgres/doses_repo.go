package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"childcare-vaccines/internal/domain/vaccines"
	"childcare-vaccines/internal/platform/dates"
)

// DosesRepo guarda el esquema en vaccine_doses; position conserva el orden generado.
type DosesRepo struct {
	db *sql.DB
}

func NewDosesRepo(db *sql.DB) *DosesRepo {
	return &DosesRepo{db: db}
}

const doseColumns = `
	id, baby_id, vaccine, name, description,
	age_in_months, recommended_date, optional,
	is_applied, applied_date, reminders_sent
`

func (r *DosesRepo) LoadDoses(ctx context.Context, babyID string) ([]vaccines.Dose, error) {
	babyID = strings.TrimSpace(babyID)
	if babyID == "" {
		return []vaccines.Dose{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT`+doseColumns+`
		FROM vaccine_doses
		WHERE baby_id = $1
		ORDER BY position ASC
	`, babyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDoses(rows)
}

// SaveDoses reemplaza el esquema completo dentro de una transacción.
func (r *DosesRepo) SaveDoses(ctx context.Context, babyID string, doses []vaccines.Dose) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM vaccine_doses WHERE baby_id = $1`, babyID); err != nil {
		return err
	}

	for i, d := range doses {
		sent, mErr := marshalSent(d.RemindersSent)
		if mErr != nil {
			err = mErr
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO vaccine_doses (
				id, baby_id, position, vaccine, name, description,
				age_in_months, recommended_date, optional,
				is_applied, applied_date, reminders_sent
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`,
			d.ID,
			babyID,
			i,
			string(d.Vaccine),
			d.Name,
			d.Description,
			d.AgeInMonths,
			d.RecommendedDate,
			d.Optional,
			d.IsApplied,
			toNullDate(d.AppliedDate),
			sent,
		); err != nil {
			return fmt.Errorf("insert dose %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

func (r *DosesRepo) UpdateDose(ctx context.Context, d vaccines.Dose) error {
	sent, err := marshalSent(d.RemindersSent)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE vaccine_doses
		SET
			is_applied = $3,
			applied_date = $4,
			reminders_sent = $5
		WHERE id = $1 AND baby_id = $2
	`,
		d.ID,
		d.BabyID,
		d.IsApplied,
		toNullDate(d.AppliedDate),
		sent,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return vaccines.ErrNotFound
	}
	return nil
}

func (r *DosesRepo) ListOutstanding(ctx context.Context) ([]vaccines.Dose, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT`+doseColumns+`
		FROM vaccine_doses
		WHERE NOT is_applied
		ORDER BY recommended_date ASC, baby_id ASC, position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDoses(rows)
}

func scanDoses(rows *sql.Rows) ([]vaccines.Dose, error) {
	out := make([]vaccines.Dose, 0)
	for rows.Next() {
		var d vaccines.Dose
		var vaccine string
		var applied sql.NullTime
		var sent []byte
		if err := rows.Scan(
			&d.ID,
			&d.BabyID,
			&vaccine,
			&d.Name,
			&d.Description,
			&d.AgeInMonths,
			&d.RecommendedDate,
			&d.Optional,
			&d.IsApplied,
			&applied,
			&sent,
		); err != nil {
			return nil, err
		}

		d.Vaccine = vaccines.Vaccine(vaccine)
		d.RecommendedDate = dates.DateOnly(d.RecommendedDate)
		if applied.Valid {
			t := dates.DateOnly(applied.Time)
			d.AppliedDate = &t
		}
		if len(sent) > 0 {
			if err := json.Unmarshal(sent, &d.RemindersSent); err != nil {
				return nil, fmt.Errorf("reminders_sent %s: %w", d.ID, err)
			}
		}
		if len(d.RemindersSent) == 0 {
			d.RemindersSent = nil
		}

		out = append(out, d)
	}
	return out, rows.Err()
}

func marshalSent(m map[vaccines.ReminderCategory]time.Time) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// applied_date es DATE, lo pasamos como NullTime para simplificar
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
