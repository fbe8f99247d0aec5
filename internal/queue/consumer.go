package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ActivityQueue is the durable queue the activity consumer binds to the
// event exchange.
const ActivityQueue = "pos.activity"

// Handler processes one decoded event.
type Handler func(ctx context.Context, e Event) error

// Decode parses a message body into an Event.
func Decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if e.Type == "" {
		return Event{}, errors.New("event has no type")
	}
	return e, nil
}

// ActivityLogger returns a Handler that writes one structured line per
// event, the restaurant's activity feed.
func ActivityLogger(log *zap.SugaredLogger) Handler {
	return func(_ context.Context, e Event) error {
		fields := []any{
			"event_id", e.ID,
			"type", e.Type,
			"restaurant_id", e.RestaurantID,
			"occurred_at", e.OccurredAt,
		}
		switch e.Type {
		case EventOrderStatusChanged, EventKOTStatusChanged:
			var d StatusChangedData
			if err := json.Unmarshal(e.Data, &d); err != nil {
				return fmt.Errorf("unmarshal %s payload: %w", e.Type, err)
			}
			fields = append(fields, "order_number", d.OrderNumber, "from", d.From, "to", d.To, "changed_by", d.ChangedBy)
		default:
			var d struct {
				OrderNumber string `json:"order_number"`
			}
			if err := json.Unmarshal(e.Data, &d); err == nil && d.OrderNumber != "" {
				fields = append(fields, "order_number", d.OrderNumber)
			}
		}
		log.Infow("activity", fields...)
		return nil
	}
}

// ConsumeRabbitMQ binds ActivityQueue to every event on exchange and feeds
// deliveries to h until ctx is cancelled. Broker outages are retried with
// exponential backoff capped at 30s.
func ConsumeRabbitMQ(ctx context.Context, url, exchange string, h Handler, log *zap.SugaredLogger) {
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warnw("activity consumer: dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, exchange, h, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		log.Warnw("activity consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, exchange string, h Handler, log *zap.SugaredLogger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warnw("activity consumer: set QoS failed", "error", err)
	}
	if err := declareExchange(ch, exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(ActivityQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(ActivityQueue, "#", exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(ActivityQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	log.Infow("activity consumer started", "driver", "rabbitmq", "queue", ActivityQueue, "exchange", exchange)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handle(ctx, d.Body, h); err != nil {
				log.Warnw("activity consumer: handle message failed", "error", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// ConsumeNATS subscribes to every event under prefix and feeds them to h
// until ctx is cancelled. The client library handles reconnects.
func ConsumeNATS(ctx context.Context, url, prefix string, h Handler, log *zap.SugaredLogger) error {
	conn, err := nats.Connect(url,
		nats.Name("restaurant-pos-activity"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warnw("activity consumer: nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Infow("activity consumer: nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer conn.Close()

	sub, err := conn.QueueSubscribe(Subject(prefix, ">"), ActivityQueue, func(m *nats.Msg) {
		if err := handle(ctx, m.Data, h); err != nil {
			log.Warnw("activity consumer: handle message failed", "subject", m.Subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	log.Infow("activity consumer started", "driver", "nats", "subject", sub.Subject)

	<-ctx.Done()
	_ = sub.Drain()
	return nil
}

func handle(ctx context.Context, body []byte, h Handler) error {
	e, err := Decode(body)
	if err != nil {
		return err
	}
	return h(ctx, e)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
