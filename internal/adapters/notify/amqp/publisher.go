// Package amqp publica los recordatorios en un exchange de RabbitMQ; el
// servicio de push consume las colas enlazadas.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/ports/notifier"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/retry"
)

const (
	RoutingSchedule = "reminders.schedule"
	RoutingCancel   = "reminders.cancel"
	RoutingDeliver  = "reminders.deliver"
)

// channel es lo que usamos de *amqp091.Channel.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type cancelMessage struct {
	IDs []string `json:"ids"`
}

// Publisher cumple notifier.Notifier y notifier.Deliverer.
type Publisher struct {
	ch       channel
	conn     *amqp091.Connection
	exchange string
	strategy retry.Strategy
	log      logger.Logger
	now      func() time.Time
}

// Dial conecta (con reintentos), abre un canal y declara el exchange topic.
func Dial(ctx context.Context, url, exchange string, log logger.Logger) (*Publisher, error) {
	var conn *amqp091.Connection
	err := retry.DoContext(ctx, retry.Strategy{Attempts: 5, Delay: time.Second, Backoff: 2}, func() error {
		c, err := amqp091.Dial(url)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := NewPublisher(ch, exchange, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewPublisher(ch channel, exchange string, log logger.Logger) (*Publisher, error) {
	if exchange == "" {
		return nil, errors.New("amqp: exchange required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		strategy: retry.Strategy{Attempts: 3, Delay: 100 * time.Millisecond, Backoff: 2},
		log:      log.With(map[string]any{"component": "notify.amqp", "exchange": exchange}),
		now:      time.Now,
	}, nil
}

func (p *Publisher) Schedule(ctx context.Context, n notifier.Notification) error {
	return p.publish(ctx, RoutingSchedule, n.ID, n)
}

func (p *Publisher) Cancel(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return p.publish(ctx, RoutingCancel, "", cancelMessage{IDs: ids})
}

func (p *Publisher) Deliver(ctx context.Context, n notifier.Notification) error {
	return p.publish(ctx, RoutingDeliver, n.ID, n)
}

func (p *Publisher) publish(ctx context.Context, key, messageID string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    messageID,
		Timestamp:    p.now(),
		Body:         body,
	}

	err = retry.DoContext(ctx, p.strategy, func() error {
		return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg)
	})
	if err != nil {
		p.log.Error("publish failed", map[string]any{"routing_key": key, "id": messageID, "error": err.Error()})
		return fmt.Errorf("publish %s: %w", key, err)
	}

	p.log.Debug("published", map[string]any{"routing_key": key, "id": messageID})
	return nil
}

func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}
