package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// Store is the persistence the order workflow needs. *repository.OrderStore
// implements it over MySQL.
type Store interface {
	GetOrder(ctx context.Context, restaurantID, id uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, restaurantID uuid.UUID, f model.OrderFilter) ([]*model.Order, error)
	OrderHistory(ctx context.Context, restaurantID, orderID uuid.UUID) ([]model.StatusChange, error)
	GetKOT(ctx context.Context, restaurantID, id uuid.UUID) (*model.KOT, error)
	GetKOTByOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (*model.KOT, error)
	ListKOTs(ctx context.Context, restaurantID uuid.UUID, status *model.KOTStatus) ([]*model.KOT, error)
	GetMenuItems(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*model.MenuItem, error)
	GetTable(ctx context.Context, restaurantID, id uuid.UUID) (*model.Table, error)
	WithTx(ctx context.Context, fn func(repository.OrderTx) error) error
}

// OrderDraft is a request to place an order.
type OrderDraft struct {
	Type     model.OrderType
	TableID  *uuid.UUID
	Customer *model.CustomerInfo
	Items    []DraftItem
	Discount decimal.Decimal
	Totals   CallerTotals
}

// DraftItem is one requested line. Price is only honoured in trust pricing
// mode; otherwise the current menu price is used.
type DraftItem struct {
	MenuItemID          uuid.UUID
	Quantity            int
	Price               *decimal.Decimal
	SpecialInstructions string
}

// OrderService runs order creation and the order/KOT/table status
// synchronisation.
type OrderService struct {
	store  Store
	policy config.OrderPolicy
	events queue.Publisher
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewOrderService(store Store, policy config.OrderPolicy, events queue.Publisher, log *zap.SugaredLogger) *OrderService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &OrderService{
		store:  store,
		policy: policy,
		events: events,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FormatOrderNumber renders a sequence value as a display order number.
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD-%06d", seq)
}

// MaxItemQuantity bounds the quantity of one menu item in an order, summed
// over every line that names it.
const MaxItemQuantity = 10000

func validateDraft(d *OrderDraft) error {
	if !d.Type.Valid() {
		return invalid("type must be one of dine-in, takeaway, delivery")
	}
	if len(d.Items) == 0 {
		return invalid("order must contain at least one item")
	}
	perItem := make(map[uuid.UUID]int, len(d.Items))
	for i, it := range d.Items {
		if it.MenuItemID == uuid.Nil {
			return invalid("items[%d]: menu_item_id is required", i)
		}
		if it.Quantity <= 0 {
			return invalid("items[%d]: quantity must be greater than zero", i)
		}
		if it.Quantity > MaxItemQuantity {
			return invalid("items[%d]: quantity must not exceed %d", i, MaxItemQuantity)
		}
		// both operands are at most MaxItemQuantity here, so the sum cannot wrap
		perItem[it.MenuItemID] += it.Quantity
		if perItem[it.MenuItemID] > MaxItemQuantity {
			return invalid("items[%d]: total quantity of menu item %s must not exceed %d", i, it.MenuItemID, MaxItemQuantity)
		}
		if it.Price != nil && it.Price.IsNegative() {
			return invalid("items[%d]: price must not be negative", i)
		}
	}
	if d.Discount.IsNegative() {
		return invalid("discount must not be negative")
	}
	if d.Type == model.OrderTypeDineIn {
		if d.TableID == nil || *d.TableID == uuid.Nil {
			return invalid("table_id is required for dine-in orders")
		}
		return nil
	}
	if d.Customer == nil || strings.TrimSpace(d.Customer.Name) == "" {
		return invalid("customer name is required for %s orders", d.Type)
	}
	// only dine-in orders hold a table
	d.TableID = nil
	return nil
}

// CreateOrder validates and places an order. Stock decrement, table
// occupation, the order, its KOT and the first audit row commit together or
// not at all.
func (s *OrderService) CreateOrder(ctx context.Context, id Identity, d OrderDraft) (*model.Order, error) {
	if err := validateDraft(&d); err != nil {
		return nil, err
	}
	rid := id.RestaurantID

	if d.TableID != nil {
		t, err := s.store.GetTable(ctx, rid, *d.TableID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("table unavailable")
		}
		if err != nil {
			return nil, fmt.Errorf("load table: %w", err)
		}
		if t.Status != model.TableAvailable {
			return nil, invalid("table unavailable")
		}
	}

	dem := aggregateDemand(d.Items)
	menu, err := s.store.GetMenuItems(ctx, rid, dem.ids)
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	if err := checkStock(dem, menu); err != nil {
		return nil, err
	}

	now := s.now()
	order := &model.Order{
		ID:           uuid.New(),
		Type:         d.Type,
		TableID:      d.TableID,
		Customer:     d.Customer,
		Status:       model.OrderPending,
		StaffID:      id.UserID,
		RestaurantID: rid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	lines := make([]pricedLine, 0, len(d.Items))
	for _, it := range d.Items {
		m := menu[it.MenuItemID]
		price := m.Price
		if s.policy.PricingMode == config.PricingTrust && it.Price != nil {
			price = *it.Price
		}
		price = round2(price)
		order.Items = append(order.Items, model.OrderItem{
			ID:                  uuid.New(),
			OrderID:             order.ID,
			MenuItemID:          it.MenuItemID,
			MenuItemName:        m.Name,
			Quantity:            it.Quantity,
			Price:               price,
			SpecialInstructions: strings.TrimSpace(it.SpecialInstructions),
		})
		lines = append(lines, pricedLine{Quantity: it.Quantity, Price: price})
	}
	quote, err := Price(s.policy, lines, d.Discount, d.Totals)
	if err != nil {
		return nil, err
	}
	order.Subtotal, order.Tax, order.ServiceCharge = quote.Subtotal, quote.Tax, quote.ServiceCharge
	order.Discount, order.Total = quote.Discount, quote.Total

	var kot *model.KOT
	err = s.store.WithTx(ctx, func(tx repository.OrderTx) error {
		if err := consumeStock(ctx, tx, rid, dem); err != nil {
			return err
		}

		var tableNumber *int
		if order.TableID != nil {
			t, err := tx.LockTable(ctx, rid, *order.TableID)
			if errors.Is(err, repository.ErrNotFound) {
				return &ConflictError{Message: "table was removed while the order was placed"}
			}
			if err != nil {
				return err
			}
			if t.Status != model.TableAvailable || t.CurrentOrderID != nil {
				return &ConflictError{Message: "table was taken by a concurrent order"}
			}
			if err := tx.OccupyTable(ctx, rid, t.ID, order.ID); err != nil {
				if errors.Is(err, repository.ErrTableTaken) {
					return &ConflictError{Message: "table was taken by a concurrent order"}
				}
				return err
			}
			n := t.Number
			tableNumber = &n
		}

		seq, err := tx.NextOrderSequence(ctx, rid)
		if err != nil {
			return err
		}
		order.OrderNumber = FormatOrderNumber(seq)
		order.TableNumber = tableNumber
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		kot = model.NewKOTForOrder(order, tableNumber)
		if err := tx.InsertKOT(ctx, kot); err != nil {
			return err
		}

		return tx.AppendStatusLog(ctx, &model.StatusChange{
			OrderID:      order.ID,
			RestaurantID: rid,
			To:           model.OrderPending,
			ChangedBy:    id.UserID,
			Source:       "create",
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, s.txError("create order", err)
	}

	s.log.Infow("order created",
		"order_id", order.ID, "order_number", order.OrderNumber, "restaurant_id", rid,
		"type", order.Type, "total", order.Total.StringFixed(2))
	s.publish(ctx, queue.OrderCreated(order), queue.KOTCreated(kot))
	return order, nil
}

// txError passes the typed errors of this package through and converts
// repository conflicts. Everything else is an internal failure.
func (s *OrderService) txError(op string, err error) error {
	var (
		ve  *ValidationError
		oos *OutOfStockError
		ce  *ConflictError
		ite *InvalidTransitionError
		nfe *NotFoundError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &oos), errors.As(err, &ce), errors.As(err, &ite), errors.As(err, &nfe):
		return err
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrDuplicate):
		s.log.Warnw("transaction conflict", "op", op, "error", err)
		return &ConflictError{Message: "the request conflicted with a concurrent update, please retry"}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// publish emits events after commit. Failures are logged and never reach
// the caller; the committed state is the source of truth.
func (s *OrderService) publish(ctx context.Context, events ...queue.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for _, e := range events {
		if err := s.events.Publish(ctx, e); err != nil {
			s.log.Warnw("event publish failed", "type", e.Type, "event_id", e.ID, "error", err)
		}
	}
}

func notFound(entity string, id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}

func (s *OrderService) GetOrder(ctx context.Context, id Identity, orderID uuid.UUID) (*model.Order, error) {
	o, err := s.store.GetOrder(ctx, id.RestaurantID, orderID)
	if err != nil {
		return nil, notFound("order", orderID, err)
	}
	return o, nil
}

// ListOrders returns the tenant's orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, id Identity, f model.OrderFilter) ([]*model.Order, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, invalid("unknown status %q", *f.Status)
	}
	if f.Type != nil && !f.Type.Valid() {
		return nil, invalid("unknown type %q", *f.Type)
	}
	return s.store.ListOrders(ctx, id.RestaurantID, f)
}

// OrderHistory returns the status audit trail of an order.
func (s *OrderService) OrderHistory(ctx context.Context, id Identity, orderID uuid.UUID) ([]model.StatusChange, error) {
	if _, err := s.store.GetOrder(ctx, id.RestaurantID, orderID); err != nil {
		return nil, notFound("order", orderID, err)
	}
	return s.store.OrderHistory(ctx, id.RestaurantID, orderID)
}

func (s *OrderService) GetKOT(ctx context.Context, id Identity, kotID uuid.UUID) (*model.KOT, error) {
	k, err := s.store.GetKOT(ctx, id.RestaurantID, kotID)
	if err != nil {
		return nil, notFound("kot", kotID, err)
	}
	return k, nil
}

func (s *OrderService) GetKOTByOrder(ctx context.Context, id Identity, orderID uuid.UUID) (*model.KOT, error) {
	k, err := s.store.GetKOTByOrder(ctx, id.RestaurantID, orderID)
	if err != nil {
		return nil, notFound("kot", orderID, err)
	}
	return k, nil
}

// ListKOTs returns the tenant's tickets oldest first.
func (s *OrderService) ListKOTs(ctx context.Context, id Identity, status *model.KOTStatus) ([]*model.KOT, error) {
	if status != nil && !status.Valid() {
		return nil, invalid("unknown status %q", *status)
	}
	return s.store.ListKOTs(ctx, id.RestaurantID, status)
}
