package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"childcare-vaccines/internal/app"
	"childcare-vaccines/internal/platform/config"
	"childcare-vaccines/internal/platform/logger"
)

// worker entrega recordatorios vencidos sin levantar la API.
func main() {
	cfg, err := config.Load(config.New(), os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName + "-worker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	defer a.Close()

	d, err := a.Dispatcher()
	if err != nil {
		// con REMINDER_FIRING=notifier el servicio externo ya dispara
		log.Error("worker cannot run", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	d.Run(ctx)
	log.Info("worker stopped", nil)
}
