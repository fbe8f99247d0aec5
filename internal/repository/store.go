package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// OrderStore bundles the reads and the transaction entry point the order
// service depends on.
type OrderStore struct {
	orders *OrderRepo
	kots   *KOTRepo
	menu   *MenuRepo
	tables *TableRepo
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{
		orders: NewOrderRepo(db),
		kots:   NewKOTRepo(db),
		menu:   NewMenuRepo(db),
		tables: NewTableRepo(db),
	}
}

func (s *OrderStore) GetOrder(ctx context.Context, restaurantID, id uuid.UUID) (*model.Order, error) {
	return s.orders.GetByID(ctx, restaurantID, id)
}

func (s *OrderStore) ListOrders(ctx context.Context, restaurantID uuid.UUID, f model.OrderFilter) ([]*model.Order, error) {
	return s.orders.List(ctx, restaurantID, f)
}

func (s *OrderStore) OrderHistory(ctx context.Context, restaurantID, orderID uuid.UUID) ([]model.StatusChange, error) {
	return s.orders.StatusHistory(ctx, restaurantID, orderID)
}

func (s *OrderStore) GetKOT(ctx context.Context, restaurantID, id uuid.UUID) (*model.KOT, error) {
	return s.kots.GetByID(ctx, restaurantID, id)
}

func (s *OrderStore) GetKOTByOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (*model.KOT, error) {
	return s.kots.GetByOrderID(ctx, restaurantID, orderID)
}

func (s *OrderStore) ListKOTs(ctx context.Context, restaurantID uuid.UUID, status *model.KOTStatus) ([]*model.KOT, error) {
	return s.kots.List(ctx, restaurantID, status)
}

func (s *OrderStore) GetMenuItems(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*model.MenuItem, error) {
	return s.menu.GetByIDs(ctx, restaurantID, ids)
}

func (s *OrderStore) GetTable(ctx context.Context, restaurantID, id uuid.UUID) (*model.Table, error) {
	return s.tables.GetByID(ctx, restaurantID, id)
}

func (s *OrderStore) WithTx(ctx context.Context, fn func(OrderTx) error) error {
	return s.orders.WithTx(ctx, fn)
}
