package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// OrderRepo reads orders with their items. Writes happen only inside an
// OrderTx; see order_tx.go.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderSelect = `SELECT o.id, o.order_number, o.type, o.table_id, t.number,
	o.customer_name, o.customer_phone, o.customer_address,
	o.subtotal, o.tax, o.service_charge, o.discount, o.total,
	o.status, o.staff_id, o.restaurant_id, o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN tables t ON t.id = o.table_id`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var (
		o                    model.Order
		tableID              uuid.NullUUID
		tableNum             sql.NullInt64
		cName, cPhone, cAddr sql.NullString
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.Type, &tableID, &tableNum,
		&cName, &cPhone, &cAddr,
		&o.Subtotal, &o.Tax, &o.ServiceCharge, &o.Discount, &o.Total,
		&o.Status, &o.StaffID, &o.RestaurantID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if tableID.Valid {
		id := tableID.UUID
		o.TableID = &id
	}
	o.TableNumber = intPtr(tableNum)
	if cName.Valid || cPhone.Valid || cAddr.Valid {
		o.Customer = &model.CustomerInfo{Name: cName.String, Phone: cPhone.String, Address: cAddr.String}
	}
	return &o, nil
}

// GetByID returns the order with its items, or ErrNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.Order, error) {
	return orderByID(ctx, r.db, restaurantID, id, false)
}

func orderByID(ctx context.Context, q execQuerier, restaurantID, id uuid.UUID, lock bool) (*model.Order, error) {
	query := orderSelect + ` WHERE o.id = ? AND o.restaurant_id = ?`
	if lock {
		query += ` FOR UPDATE OF o`
	}
	o, err := scanOrder(q.QueryRowContext(ctx, query, id, restaurantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translate(err)
	}
	items, err := orderItems(ctx, q, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// List returns the restaurant's orders newest first, each with its items.
func (r *OrderRepo) List(ctx context.Context, restaurantID uuid.UUID, f model.OrderFilter) ([]*model.Order, error) {
	q := orderSelect + ` WHERE o.restaurant_id = ?`
	args := []any{restaurantID}
	if f.Status != nil {
		q += ` AND o.status = ?`
		args = append(args, *f.Status)
	}
	if f.Type != nil {
		q += ` AND o.type = ?`
		args = append(args, *f.Type)
	}
	if f.TableID != nil {
		q += ` AND o.table_id = ?`
		args = append(args, *f.TableID)
	}
	if f.Date != nil {
		day := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		q += ` AND o.created_at >= ? AND o.created_at < ?`
		args = append(args, day, day.Add(24*time.Hour))
	}
	q += ` ORDER BY o.created_at DESC, o.order_number DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var (
		out []*model.Order
		ids []uuid.UUID
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	items, err := orderItems(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range out {
		o.Items = items[o.ID]
	}
	return out, nil
}

// orderItems loads the lines of several orders in one query, keyed by
// order id and kept in line order.
func orderItems(ctx context.Context, q execQuerier, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	out := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.menu_item_id, COALESCE(m.name, ''), oi.quantity, oi.price,
		        COALESCE(oi.special_instructions, '')
		 FROM order_items oi
		 LEFT JOIN menu_items m ON m.id = oi.menu_item_id
		 WHERE oi.order_id IN (`+placeholders(len(orderIDs))+`)
		 ORDER BY oi.order_id, oi.line_no`, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.MenuItemName, &it.Quantity,
			&it.Price, &it.SpecialInstructions); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

// StatusHistory returns the audit trail of an order, oldest first.
func (r *OrderRepo) StatusHistory(ctx context.Context, restaurantID, orderID uuid.UUID) ([]model.StatusChange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, restaurant_id, COALESCE(from_status, ''), to_status, changed_by, source, created_at
		 FROM order_status_log
		 WHERE order_id = ? AND restaurant_id = ?
		 ORDER BY created_at ASC`, orderID, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.StatusChange{}
	for rows.Next() {
		var c model.StatusChange
		if err := rows.Scan(&c.ID, &c.OrderID, &c.RestaurantID, &c.From, &c.To, &c.ChangedBy,
			&c.Source, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
