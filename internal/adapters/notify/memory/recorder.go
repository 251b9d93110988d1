// Package memory guarda los recordatorios en proceso (modo dev y tests).
package memory

import (
	"context"
	"sort"
	"sync"

	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/ports/notifier"
)

// Recorder cumple notifier.Notifier y notifier.Deliverer.
type Recorder struct {
	mu        sync.Mutex
	log       logger.Logger
	scheduled map[string]notifier.Notification
	delivered []notifier.Notification
}

func NewRecorder(log logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{
		log:       log.With(map[string]any{"component": "notify.memory"}),
		scheduled: make(map[string]notifier.Notification),
	}
}

// Schedule reemplaza si el ID ya estaba programado.
func (r *Recorder) Schedule(ctx context.Context, n notifier.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scheduled[n.ID] = n
	r.log.Debug("reminder scheduled", map[string]any{"id": n.ID, "fire_at": n.FireAt})
	return nil
}

func (r *Recorder) Cancel(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.scheduled, id)
	}
	return nil
}

func (r *Recorder) Deliver(ctx context.Context, n notifier.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.delivered = append(r.delivered, n)
	r.log.Info("reminder delivered", map[string]any{"id": n.ID, "title": n.Title})
	return nil
}

// Scheduled devuelve lo programado ordenado por FireAt.
func (r *Recorder) Scheduled() []notifier.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]notifier.Notification, 0, len(r.scheduled))
	for _, n := range r.scheduled {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

func (r *Recorder) Delivered() []notifier.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]notifier.Notification, len(r.delivered))
	copy(out, r.delivered)
	return out
}
