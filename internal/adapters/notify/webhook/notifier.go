package webhook

import (
	"context"
	"errors"
	"net/http"
	"time"

	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/ports/notifier"

	"github.com/wb-go/wbf/retry"
)

// Notifier cumple notifier.Notifier y notifier.Deliverer contra la pasarela:
//
//	POST /reminders          programa (idempotente por id)
//	POST /reminders/cancel   {"ids": [...]}
//	POST /deliveries         entrega inmediata
type Notifier struct {
	c        *client
	log      logger.Logger
	strategy retry.Strategy
}

type Options struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	Transport http.RoundTripper
}

func New(opts Options, log logger.Logger) (*Notifier, error) {
	c, err := newClient(opts.BaseURL, opts.APIKey, opts.Timeout, opts.Transport)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{
		c:        c,
		log:      log.With(map[string]any{"component": "notify.webhook"}),
		strategy: retry.Strategy{Attempts: 3, Delay: 200 * time.Millisecond, Backoff: 2},
	}, nil
}

func (n *Notifier) Schedule(ctx context.Context, nt notifier.Notification) error {
	return n.post(ctx, "/reminders", nt)
}

func (n *Notifier) Cancel(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return n.post(ctx, "/reminders/cancel", map[string][]string{"ids": ids})
}

func (n *Notifier) Deliver(ctx context.Context, nt notifier.Notification) error {
	return n.post(ctx, "/deliveries", nt)
}

// post reintenta errores de red y respuestas temporales; un 4xx corta de inmediato.
func (n *Notifier) post(ctx context.Context, path string, in any) error {
	var permanent error
	err := retry.DoContext(ctx, n.strategy, func() error {
		err := n.c.postJSON(ctx, path, in)
		var he *HTTPError
		if errors.As(err, &he) && !he.Temporary() {
			permanent = err
			return nil
		}
		return err
	})
	if permanent != nil {
		err = permanent
	}
	if err != nil {
		n.log.Warn("webhook call failed", map[string]any{"path": path, "error": err.Error()})
		return err
	}
	return nil
}
