package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// UpdateOrderStatus moves an order along the transition table. Entering a
// releasing status frees the order's table in the same transaction.
// Requesting the current status changes nothing and emits no event.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id Identity, orderID uuid.UUID, target model.OrderStatus) (*model.Order, error) {
	if !target.Valid() {
		return nil, invalid("unknown status %q", target)
	}
	rid := id.RestaurantID

	var (
		order   *model.Order
		from    model.OrderStatus
		changed bool
	)
	err := s.store.WithTx(ctx, func(tx repository.OrderTx) error {
		o, err := tx.LockOrder(ctx, rid, orderID)
		if err != nil {
			return notFound("order", orderID, err)
		}
		order, from = o, o.Status
		if o.Status == target {
			return nil
		}
		if !model.CanTransitionOrder(o.Type, o.Status, target) {
			return orderTransitionError(o.Status, target)
		}

		now := s.now()
		if err := tx.SetOrderStatus(ctx, rid, o.ID, target, now); err != nil {
			return err
		}
		if target == model.OrderCancelled && s.policy.RestockOnCancel {
			if err := restoreStock(ctx, tx, o); err != nil {
				return err
			}
		}
		if target.ReleasesTable() && o.TableID != nil {
			if err := tx.ReleaseTable(ctx, rid, *o.TableID, o.ID); err != nil {
				return err
			}
		}
		if err := tx.AppendStatusLog(ctx, &model.StatusChange{
			OrderID:      o.ID,
			RestaurantID: rid,
			From:         from,
			To:           target,
			ChangedBy:    id.UserID,
			Source:       "order",
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		o.Status, o.UpdatedAt = target, now
		changed = true
		return nil
	})
	if err != nil {
		return nil, s.txError("update order status", err)
	}
	if changed {
		s.log.Infow("order status changed", "order_id", order.ID, "from", from, "to", target, "restaurant_id", rid)
		s.publish(ctx, queue.OrderStatusChanged(order, from, id.UserID))
	}
	return order, nil
}

// UpdateKOTStatus advances a kitchen ticket and propagates the change to
// its order: preparing lifts a pending order, ready lifts a pending or
// preparing order. Orders the floor already moved past stay put.
func (s *OrderService) UpdateKOTStatus(ctx context.Context, id Identity, kotID uuid.UUID, target model.KOTStatus) (*model.KOT, error) {
	if !target.Valid() {
		return nil, invalid("unknown status %q", target)
	}
	rid := id.RestaurantID

	var (
		kot          *model.KOT
		order        *model.Order
		kotFrom      model.KOTStatus
		orderFrom    model.OrderStatus
		kotChanged   bool
		orderChanged bool
	)
	err := s.store.WithTx(ctx, func(tx repository.OrderTx) error {
		k, err := tx.LockKOT(ctx, rid, kotID)
		if err != nil {
			return notFound("kot", kotID, err)
		}
		kot, kotFrom = k, k.Status
		if k.Status == target {
			return nil
		}
		o, err := tx.LockOrder(ctx, rid, k.OrderID)
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "order", ID: k.OrderID}
		}
		if err != nil {
			return err
		}
		order, orderFrom = o, o.Status
		if o.Status.Terminal() {
			return &InvalidTransitionError{Entity: "kot", From: string(k.Status), To: string(target),
				Reason: "order is " + string(o.Status)}
		}
		if !model.CanTransitionKOT(k.Status, target) {
			return kotTransitionError(k.Status, target)
		}

		now := s.now()
		if err := tx.SetKOTStatus(ctx, rid, k.ID, target, now); err != nil {
			return err
		}
		k.Status, k.UpdatedAt = target, now
		kotChanged = true

		next, ok := model.PropagateKOTStatus(target, o.Status)
		if !ok {
			return nil
		}
		if err := tx.SetOrderStatus(ctx, rid, o.ID, next, now); err != nil {
			return err
		}
		if err := tx.AppendStatusLog(ctx, &model.StatusChange{
			OrderID:      o.ID,
			RestaurantID: rid,
			From:         o.Status,
			To:           next,
			ChangedBy:    id.UserID,
			Source:       "kot",
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		o.Status, o.UpdatedAt = next, now
		orderChanged = true
		return nil
	})
	if err != nil {
		return nil, s.txError("update kot status", err)
	}

	var events []queue.Event
	if kotChanged {
		s.log.Infow("kot status changed", "kot_id", kot.ID, "from", kotFrom, "to", target, "restaurant_id", rid)
		events = append(events, queue.KOTStatusChanged(kot, kotFrom, id.UserID))
	}
	if orderChanged {
		events = append(events, queue.OrderStatusChanged(order, orderFrom, id.UserID))
	}
	s.publish(ctx, events...)
	return kot, nil
}
