package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"childcare-vaccines/internal/app"
	"childcare-vaccines/internal/platform/config"
	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/router"
)

func main() {
	cfg, err := config.Load(config.New(), os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	defer a.Close()

	r := router.NewRouter(router.Options{
		AuthVerifier: a.Verifier, // nil => modo dev
		Log:          log,
		Services:     a.Services,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// un solo camino de disparo: con cmd/worker aparte, DISPATCH_IN_API=false
	if a.DispatchInAPI() {
		d, err := a.Dispatcher()
		if err != nil {
			log.Error("dispatcher setup failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		go d.Run(ctx)
	} else {
		log.Info("in-process dispatcher off", map[string]any{"firing": cfg.ReminderFiring})
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": srv.Addr, "storage": string(cfg.Storage)})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}
