// Package queue carries domain events from the order workflow to a message
// broker and consumes them back for activity logging.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Event types, also used as routing keys and NATS subject suffixes.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventKOTCreated         = "kot.created"
	EventKOTStatusChanged   = "kot.status_changed"
)

// Event is the envelope published for every domain change. Data holds the
// JSON payload specific to Type.
type Event struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Data         json.RawMessage `json:"data"`
}

// StatusChangedData is the payload of the *.status_changed events.
type StatusChangedData struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ChangedBy   uuid.UUID `json:"changed_by"`
}

// Publisher sends events to a broker. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

func newEvent(typ string, restaurantID uuid.UUID, at time.Time, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		// model types always marshal; keep the envelope usable regardless
		raw = json.RawMessage(`null`)
	}
	return Event{ID: uuid.New(), Type: typ, RestaurantID: restaurantID, OccurredAt: at.UTC(), Data: raw}
}

func OrderCreated(o *model.Order) Event {
	return newEvent(EventOrderCreated, o.RestaurantID, o.CreatedAt, o)
}

func KOTCreated(k *model.KOT) Event {
	return newEvent(EventKOTCreated, k.RestaurantID, k.CreatedAt, k)
}

func OrderStatusChanged(o *model.Order, from model.OrderStatus, by uuid.UUID) Event {
	return newEvent(EventOrderStatusChanged, o.RestaurantID, o.UpdatedAt, StatusChangedData{
		ID: o.ID, OrderID: o.ID, OrderNumber: o.OrderNumber, From: string(from), To: string(o.Status), ChangedBy: by,
	})
}

func KOTStatusChanged(k *model.KOT, from model.KOTStatus, by uuid.UUID) Event {
	return newEvent(EventKOTStatusChanged, k.RestaurantID, k.UpdatedAt, StatusChangedData{
		ID: k.ID, OrderID: k.OrderID, OrderNumber: k.OrderNumber, From: string(from), To: string(k.Status), ChangedBy: by,
	})
}

// NopPublisher drops every event. It is used when EVENTS_DRIVER=none.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
