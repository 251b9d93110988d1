// Package app arma repos, notificadores y servicios a partir de la config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"childcare-vaccines/internal/adapters/auth/jwtauth"
	notifyamqp "childcare-vaccines/internal/adapters/notify/amqp"
	notifymem "childcare-vaccines/internal/adapters/notify/memory"
	"childcare-vaccines/internal/adapters/notify/webhook"
	mem "childcare-vaccines/internal/adapters/storage/memory"
	pg "childcare-vaccines/internal/adapters/storage/postgres"
	"childcare-vaccines/internal/adapters/storage/redisdoc"
	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/domain/diary"
	"childcare-vaccines/internal/domain/vaccines"
	"childcare-vaccines/internal/platform/config"
	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/ports/auth"
	"childcare-vaccines/internal/ports/notifier"
	"childcare-vaccines/internal/worker"
)

type Stores struct {
	Babies babies.Repository
	Doses  vaccines.Repository
	Diary  diary.Repository
}

func MemoryStores() Stores {
	return Stores{
		Babies: mem.NewBabyRepo(),
		Doses:  mem.NewDoseRepo(),
		Diary:  mem.NewDiaryRepo(),
	}
}

// Services es lo que consumen el router, el worker y la CLI.
type Services struct {
	Babies   *babies.Service
	Vaccines *vaccines.Service
	Diary    *diary.Service
	Location *time.Location
}

type ServiceOptions struct {
	ReminderHour int
	Location     *time.Location
	Rotavirus    vaccines.RotavirusPolicy
	// Firing vacío = FiringWorker.
	Firing       vaccines.FiringMode
}

// NewServices conecta los módulos: cambiar la fecha de nacimiento regenera el esquema.
func NewServices(st Stores, n notifier.Notifier, opts ServiceOptions, log logger.Logger) *Services {
	if log == nil {
		log = logger.Nop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	babiesSvc := babies.NewService(st.Babies, log.With(map[string]any{"module": "babies"}))
	babiesSvc.SetLocation(loc)

	reminders := vaccines.NewReminderScheduler(n, vaccines.ReminderConfig{
		Hour:     opts.ReminderHour,
		Location: loc,
	})
	vaccinesSvc := vaccines.NewService(st.Doses, babiesSvc, reminders, log.With(map[string]any{"module": "vaccines"}))
	vaccinesSvc.SetLocation(loc)
	vaccinesSvc.SetRotavirusPolicy(opts.Rotavirus)
	firing := opts.Firing
	if firing == "" {
		firing = vaccines.FiringWorker
	}
	vaccinesSvc.SetFiringMode(firing)

	babiesSvc.OnBirthDateChange(vaccinesSvc)

	return &Services{
		Babies:   babiesSvc,
		Vaccines: vaccinesSvc,
		Diary:    diary.NewService(st.Diary),
		Location: loc,
	}
}

// DevServices: todo en memoria, recordatorios a las 9:00 UTC entregados por el dispatcher.
func DevServices(log logger.Logger) *Services {
	return NewServices(MemoryStores(), notifymem.NewRecorder(log), ServiceOptions{ReminderHour: 9}, log)
}

// App agrupa lo abierto desde la config. Close libera conexiones en orden inverso.
type App struct {
	Config    config.Config
	Log       logger.Logger
	Services  *Services
	Notifier  notifier.Notifier
	Deliverer notifier.Deliverer
	Verifier  auth.AuthVerifier

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{Config: cfg, Log: log}

	policy, err := vaccines.ParseRotavirusPolicy(cfg.RotavirusPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: ROTAVIRUS_POLICY: %v", config.ErrInvalidConfig, err)
	}
	firing, err := vaccines.ParseFiringMode(cfg.ReminderFiring)
	if err != nil {
		return nil, fmt.Errorf("%w: REMINDER_FIRING: %v", config.ErrInvalidConfig, err)
	}

	st, err := a.openStores(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if err := a.openNotifier(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	if cfg.JWTSecret != "" {
		v, err := jwtauth.NewVerifier(cfg.JWTSecret, cfg.AppName)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Verifier = v
	} else {
		log.Warn("JWT_SECRET empty, running in dev auth mode (X-Debug-User-ID)", nil)
	}

	a.Services = NewServices(st, a.Notifier, ServiceOptions{
		ReminderHour: cfg.ReminderHour,
		Location:     cfg.Location,
		Rotavirus:    policy,
		Firing:       firing,
	}, log)

	return a, nil
}

func (a *App) openStores(ctx context.Context) (Stores, error) {
	switch a.Config.Storage {
	case config.StoragePostgres:
		db, err := pg.Open(a.Config.DBDSN)
		if err != nil {
			return Stores{}, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := pg.Migrate(ctx, db); err != nil {
			return Stores{}, err
		}
		a.Log.Info("storage ready", map[string]any{"storage": "postgres"})
		return Stores{
			Babies: pg.NewBabiesRepo(db),
			Doses:  pg.NewDosesRepo(db),
			Diary:  pg.NewDiaryRepo(db),
		}, nil

	case config.StorageRedis:
		client, err := redisdoc.Connect(ctx, a.Config.RedisAddr)
		if err != nil {
			return Stores{}, err
		}
		a.closers = append(a.closers, client.Close)
		a.Log.Info("storage ready", map[string]any{"storage": "redis", "addr": a.Config.RedisAddr})
		return Stores{
			Babies: redisdoc.NewBabiesRepo(client),
			Doses:  redisdoc.NewDosesRepo(client),
			Diary:  redisdoc.NewDiaryRepo(client),
		}, nil

	default:
		a.Log.Warn("using in-memory storage, data is lost on restart", nil)
		return MemoryStores(), nil
	}
}

// openNotifier: AMQP si hay URL, si no webhook, si no memoria.
func (a *App) openNotifier(ctx context.Context) error {
	switch {
	case a.Config.AMQPURL != "":
		p, err := notifyamqp.Dial(ctx, a.Config.AMQPURL, a.Config.AMQPExchange, a.Log)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, p.Close)
		a.Notifier, a.Deliverer = p, p

	case a.Config.WebhookURL != "":
		w, err := webhook.New(webhook.Options{BaseURL: a.Config.WebhookURL, APIKey: a.Config.WebhookAPIKey}, a.Log)
		if err != nil {
			return err
		}
		a.Notifier, a.Deliverer = w, w

	default:
		r := notifymem.NewRecorder(a.Log)
		a.Notifier, a.Deliverer = r, r
	}
	return nil
}

// Dispatcher arma el loop de entrega. Con FiringNotifier no hay nada que
// entregar desde acá y devuelve vaccines.ErrDispatchDisabled.
func (a *App) Dispatcher() (*worker.Dispatcher, error) {
	if a.Services.Vaccines.FiringMode() != vaccines.FiringWorker {
		return nil, vaccines.ErrDispatchDisabled
	}
	return worker.NewDispatcher(a.Services.Vaccines, a.Deliverer, a.Config.DispatchInterval, a.Log), nil
}

// DispatchInAPI indica si cmd/api debe correr su propio dispatcher.
func (a *App) DispatchInAPI() bool {
	return a.Config.DispatchInAPI && a.Services.Vaccines.FiringMode() == vaccines.FiringWorker
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
