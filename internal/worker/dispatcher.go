// Package worker entrega periódicamente los recordatorios vencidos.
package worker

import (
	"context"
	"time"

	"childcare-vaccines/internal/domain/vaccines"
	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/ports/notifier"
)

// Source es la parte de vaccines.Service que usa el dispatcher.
type Source interface {
	DispatchDue(ctx context.Context, d notifier.Deliverer) (vaccines.DispatchResult, error)
}

type Dispatcher struct {
	src       Source
	deliverer notifier.Deliverer
	interval  time.Duration
	log       logger.Logger
}

func NewDispatcher(src Source, d notifier.Deliverer, interval time.Duration, log logger.Logger) *Dispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		src:       src,
		deliverer: d,
		interval:  interval,
		log:       log.With(map[string]any{"component": "dispatcher"}),
	}
}

// Run corre un ciclo al arrancar y luego uno por tick, hasta que ctx termine.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.Info("dispatcher started", map[string]any{"interval": d.interval.String()})
	d.Tick(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.Tick(ctx)
		case <-ctx.Done():
			d.log.Info("dispatcher stopped", nil)
			return
		}
	}
}

// Tick entrega lo vencido una vez. Los fallos se reintentan en el siguiente tick.
func (d *Dispatcher) Tick(ctx context.Context) vaccines.DispatchResult {
	res, err := d.src.DispatchDue(ctx, d.deliverer)
	if err != nil {
		d.log.Error("dispatch failed", map[string]any{"error": err.Error()})
		return res
	}
	if res.Delivered > 0 || res.Failed > 0 {
		d.log.Info("reminders dispatched", map[string]any{
			"checked":   res.Checked,
			"delivered": res.Delivered,
			"failed":    res.Failed,
		})
	}
	return res
}
