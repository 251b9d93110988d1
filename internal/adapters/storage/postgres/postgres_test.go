package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/domain/diary"
	"childcare-vaccines/internal/domain/vaccines"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var babyCols = []string{
	"id", "owner_user_id", "name", "gender", "birth_date",
	"rotavirus_three_dose_brand", "created_at", "updated_at",
}

func TestBabiesRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBabiesRepo(db)

	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)SELECT.+FROM babies\s+WHERE id = \$1`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(babyCols).
			AddRow("b1", "u1", "Ana López", "female", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true, created, created))

	b, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "Ana López", b.Name)
	assert.Equal(t, babies.GenderFemale, b.Gender)
	require.NotNil(t, b.RotavirusThreeDoseBrand)
	assert.True(t, *b.RotavirusThreeDoseBrand)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), b.BirthDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBabiesRepo_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBabiesRepo(db)

	mock.ExpectQuery(`(?s)SELECT.+FROM babies`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(babyCols))
	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, babies.ErrNotFound)

	mock.ExpectExec(`UPDATE babies`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Update(context.Background(), babies.Baby{ID: "ghost"})
	assert.ErrorIs(t, err, babies.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDosesRepo_SaveDosesReplacesInTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDosesRepo(db)

	doses := []vaccines.Dose{
		{ID: "d1", BabyID: "b1", Vaccine: vaccines.VaccineBCG, Name: "BCG", RecommendedDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "d2", BabyID: "b1", Vaccine: vaccines.VaccineHepatitisB, Name: "Hepatitis B", RecommendedDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM vaccine_doses WHERE baby_id = \$1`).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	for i, d := range doses {
		mock.ExpectExec(`INSERT INTO vaccine_doses`).
			WithArgs(d.ID, "b1", i, string(d.Vaccine), d.Name, "", 0, d.RecommendedDate, false, false, sqlmock.AnyArg(), "{}").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.SaveDoses(context.Background(), "b1", doses))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDosesRepo_SaveDosesRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDosesRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM vaccine_doses`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO vaccine_doses`).
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	err := repo.SaveDoses(context.Background(), "b1", []vaccines.Dose{{ID: "d1", BabyID: "b1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDosesRepo_LoadDosesDecodesReminders(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDosesRepo(db)

	rec := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	applied := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	cols := []string{
		"id", "baby_id", "vaccine", "name", "description",
		"age_in_months", "recommended_date", "optional",
		"is_applied", "applied_date", "reminders_sent",
	}
	mock.ExpectQuery(`(?s)SELECT.+FROM vaccine_doses\s+WHERE baby_id = \$1\s+ORDER BY position`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("d1", "b1", "hexavalente", "Hexavalente 1ra", "", int64(2), rec, false, true, applied,
				[]byte(`{"T-3days":"2024-03-12T09:00:00Z"}`)).
			AddRow("d2", "b1", "rotavirus", "Rotavirus 1ra", "", int64(2), rec, false, false, nil, []byte(`{}`)))

	got, err := repo.LoadDoses(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, vaccines.VaccineHexavalente, got[0].Vaccine)
	require.NotNil(t, got[0].AppliedDate)
	assert.Equal(t, applied, *got[0].AppliedDate)
	assert.Equal(t, time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), got[0].RemindersSent[vaccines.ReminderThreeDaysBefore])

	assert.Nil(t, got[1].AppliedDate)
	assert.Nil(t, got[1].RemindersSent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDosesRepo_UpdateDoseNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDosesRepo(db)

	mock.ExpectExec(`UPDATE vaccine_doses`).
		WithArgs("d9", "b1", false, sqlmock.AnyArg(), "{}").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDose(context.Background(), vaccines.Dose{ID: "d9", BabyID: "b1"})
	assert.ErrorIs(t, err, vaccines.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDiaryRepo_ListBuildsFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiaryRepo(db)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{
		"id", "baby_id", "kind", "code", "occurred_at", "recorded_at",
		"value", "unit", "notes", "author_user_id", "status",
	}
	q := `(?s)FROM diary_entries\s+WHERE baby_id = \$1\s+AND status <> 'voided' AND kind = \$2 AND code IN \(\$3,\$4\) AND occurred_at >= \$5 ORDER BY occurred_at DESC LIMIT \$6`
	mock.ExpectQuery(q).
		WithArgs("b1", "symptom", "fiebre", "tos", from, 10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("e1", "b1", "symptom", "fiebre", from.Add(time.Hour), from.Add(time.Hour), nil, "", "", "u1", "active"))

	got, err := repo.ListByBaby(context.Background(), "b1", diary.ListFilter{
		Kind:  diary.KindSymptom,
		Codes: []diary.Code{diary.SymptomFiebre, diary.SymptomTos},
		From:  &from,
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, diary.SymptomFiebre, got[0].Code)
	assert.Nil(t, got[0].Value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDiaryRepo_VoidNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiaryRepo(db)

	mock.ExpectExec(`UPDATE diary_entries\s+SET status = 'voided'`).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Void(context.Background(), "nope"), diary.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
