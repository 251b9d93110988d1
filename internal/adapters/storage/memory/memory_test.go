package memory

import (
	"context"
	"testing"
	"time"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/domain/diary"
	"childcare-vaccines/internal/domain/vaccines"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoseRepo_CopiesOnReadAndWrite(t *testing.T) {
	repo := NewDoseRepo()
	ctx := context.Background()

	doses := vaccines.Generate(babies.Baby{ID: "b1", BirthDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		vaccines.GenerateOptions{Rotavirus: vaccines.RotavirusNever})
	require.NoError(t, repo.SaveDoses(ctx, "b1", doses))

	// mutar lo que devolvió el repo no cambia lo guardado
	loaded, err := repo.LoadDoses(ctx, "b1")
	require.NoError(t, err)
	loaded[0].IsApplied = true

	again, err := repo.LoadDoses(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, again[0].IsApplied)

	applied := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	d := again[0]
	d.IsApplied = true
	d.AppliedDate = &applied
	d.RemindersSent = map[vaccines.ReminderCategory]time.Time{vaccines.ReminderDueDay: applied}
	require.NoError(t, repo.UpdateDose(ctx, d))

	d.RemindersSent[vaccines.ReminderFollowUp] = applied
	stored, _ := repo.LoadDoses(ctx, "b1")
	assert.True(t, stored[0].IsApplied)
	assert.Len(t, stored[0].RemindersSent, 1)

	out, err := repo.ListOutstanding(ctx)
	require.NoError(t, err)
	assert.Len(t, out, len(doses)-1)

	missing := d
	missing.ID = "nope"
	assert.ErrorIs(t, repo.UpdateDose(ctx, missing), vaccines.ErrNotFound)

	empty, err := repo.LoadDoses(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBabyRepo(t *testing.T) {
	repo := NewBabyRepo()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, babies.Baby{ID: "b2", OwnerUserID: "u1", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, repo.Create(ctx, babies.Baby{ID: "b1", OwnerUserID: "u1", CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, babies.Baby{ID: "b3", OwnerUserID: "u2", CreatedAt: now}))
	assert.Error(t, repo.Create(ctx, babies.Baby{ID: "b1"}))

	list, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b1", list[0].ID)

	_, err = repo.GetByID(ctx, "zzz")
	assert.ErrorIs(t, err, babies.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, babies.Baby{ID: "zzz"}), babies.ErrNotFound)
}

func TestDiaryRepo_ListNewestFirstWithLimit(t *testing.T) {
	repo := NewDiaryRepo()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, repo.Create(ctx, diary.Entry{
			ID: id, BabyID: "b1", Kind: diary.KindSymptom, Code: diary.SymptomTos,
			OccurredAt: base.Add(time.Duration(i) * time.Hour), Status: diary.StatusActive,
		}))
	}
	require.NoError(t, repo.Void(ctx, "e2"))

	list, err := repo.ListByBaby(ctx, "b1", diary.ListFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "e3", list[0].ID)

	list, err = repo.ListByBaby(ctx, "b1", diary.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.ErrorIs(t, repo.Void(ctx, "nope"), diary.ErrNotFound)
}
