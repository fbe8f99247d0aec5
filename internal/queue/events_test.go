package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

func TestStatusChangedRoundTripsThroughDecode(t *testing.T) {
	by := uuid.New()
	o := &model.Order{
		ID: uuid.New(), OrderNumber: "ORD-000042", RestaurantID: uuid.New(),
		Status: model.OrderServed, UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	body, err := json.Marshal(OrderStatusChanged(o, model.OrderReady, by))
	if err != nil {
		t.Fatal(err)
	}

	e, err := Decode(body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if e.Type != EventOrderStatusChanged || e.RestaurantID != o.RestaurantID {
		t.Errorf("envelope = %+v", e)
	}
	var d StatusChangedData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		t.Fatal(err)
	}
	if d.From != "ready" || d.To != "served" || d.OrderNumber != "ORD-000042" || d.ChangedBy != by {
		t.Errorf("payload = %+v", d)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, body := range []string{``, `not json`, `{"id":"` + uuid.NewString() + `"}`} {
		if _, err := Decode([]byte(body)); err == nil {
			t.Errorf("Decode(%q) succeeded", body)
		}
	}
}

func TestActivityLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := ActivityLogger(zap.New(core).Sugar())

	k := &model.KOT{ID: uuid.New(), OrderID: uuid.New(), OrderNumber: "ORD-000007", RestaurantID: uuid.New(), Status: model.KOTReady}
	if err := h(context.Background(), KOTStatusChanged(k, model.KOTPreparing, uuid.New())); err != nil {
		t.Fatal(err)
	}
	if err := h(context.Background(), KOTCreated(k)); err != nil {
		t.Fatal(err)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["type"] != EventKOTStatusChanged || ctx["from"] != "preparing" || ctx["to"] != "ready" {
		t.Errorf("status entry fields = %v", ctx)
	}
	if got := entries[1].ContextMap()["order_number"]; got != "ORD-000007" {
		t.Errorf("created entry order_number = %v", got)
	}
}

func TestSubject(t *testing.T) {
	if got := Subject("pos.events", EventOrderCreated); got != "pos.events.order.created" {
		t.Errorf("Subject = %s", got)
	}
}
