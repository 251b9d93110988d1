// Package notifier define la frontera con el servicio externo de notificaciones.
package notifier

import (
	"context"
	"time"
)

// Notification es un recordatorio listo para entregar.
// FireAt se interpreta como fecha y hora de calendario (no cuenta regresiva).
type Notification struct {
	ID       string    `json:"id"`
	DoseID   string    `json:"dose_id"`
	Category string    `json:"category"`
	FireAt   time.Time `json:"fire_at"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
}

// Notifier programa y cancela recordatorios por ID. Cancel con IDs que no
// existen no es error.
type Notifier interface {
	Schedule(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, ids []string) error
}

// Deliverer entrega ahora mismo un recordatorio vencido (lo usa el worker).
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}
