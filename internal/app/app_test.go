package app

import (
	"context"
	"testing"
	"time"

	notifymem "childcare-vaccines/internal/adapters/notify/memory"
	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/domain/vaccines"
	"childcare-vaccines/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MemoryDefaults(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	cfg.Storage = config.StorageMemory
	cfg.AMQPURL, cfg.WebhookURL, cfg.JWTSecret = "", "", ""

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Verifier)
	assert.IsType(t, &notifymem.Recorder{}, a.Notifier)
	require.NotNil(t, a.Services)
	assert.Equal(t, cfg.Location, a.Services.Location)
}

func TestNew_RejectsUnknownRotavirusPolicy(t *testing.T) {
	_, err := New(context.Background(), config.Config{Storage: config.StorageMemory, RotavirusPolicy: "sometimes"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewServices_BirthDateChangeRegeneratesSchedule(t *testing.T) {
	rec := notifymem.NewRecorder(nil)
	svc := NewServices(MemoryStores(), rec, ServiceOptions{ReminderHour: 9}, nil)
	ctx := context.Background()

	b, err := svc.Babies.Create(ctx, "u1", babies.CreateInput{
		Name:      "Ana",
		BirthDate: time.Now().AddDate(0, -1, 0),
	})
	require.NoError(t, err)

	before, err := svc.Vaccines.ListDoses(ctx, b.ID)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	newBirth := b.BirthDate.AddDate(0, 0, -10)
	_, err = svc.Babies.UpdateBirthDate(ctx, b.ID, newBirth)
	require.NoError(t, err)

	after, err := svc.Vaccines.ListDoses(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, after[0].RecommendedDate.Equal(newBirth))
	// por defecto dispara el worker: nada se programa afuera
	assert.Empty(t, rec.Scheduled())
	assert.Equal(t, vaccines.FiringWorker, svc.Vaccines.FiringMode())
}

func TestNewServices_NotifierFiringSchedulesOutside(t *testing.T) {
	rec := notifymem.NewRecorder(nil)
	svc := NewServices(MemoryStores(), rec, ServiceOptions{ReminderHour: 9, Firing: vaccines.FiringNotifier}, nil)
	ctx := context.Background()

	b, err := svc.Babies.Create(ctx, "u1", babies.CreateInput{Name: "Ana", BirthDate: time.Now().AddDate(0, -1, 0)})
	require.NoError(t, err)
	_, err = svc.Vaccines.ListDoses(ctx, b.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.Scheduled())
	_, err = svc.Vaccines.DispatchDue(ctx, rec)
	assert.ErrorIs(t, err, vaccines.ErrDispatchDisabled)
	assert.Empty(t, rec.Delivered())
}

func TestNew_RejectsUnknownFiringMode(t *testing.T) {
	_, err := New(context.Background(), config.Config{Storage: config.StorageMemory, ReminderFiring: "both"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestApp_DispatcherFollowsFiringMode(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	cfg.Storage = config.StorageMemory
	cfg.AMQPURL, cfg.WebhookURL, cfg.JWTSecret = "", "", ""

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	d, err := a.Dispatcher()
	require.NoError(t, err)
	assert.NotNil(t, d)
	assert.True(t, a.DispatchInAPI())

	cfg.DispatchInAPI = false
	b, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer b.Close()
	assert.False(t, b.DispatchInAPI())

	cfg.DispatchInAPI = true
	cfg.ReminderFiring = "notifier"
	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()
	assert.False(t, c.DispatchInAPI())
	_, err = c.Dispatcher()
	assert.ErrorIs(t, err, vaccines.ErrDispatchDisabled)
}
