package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// OrderTx is the set of writes and locking reads the order workflow needs
// inside one transaction. Rows are locked KOT before its order, order
// before menu items, menu items in id order before tables, so concurrent
// workflows cannot wait on each other in a cycle.
type OrderTx interface {
	// LockMenuItems selects the items FOR UPDATE. Missing ids are absent
	// from the result.
	LockMenuItems(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*model.MenuItem, error)
	// DecrementStock returns ErrStockExhausted when fewer than qty remain.
	DecrementStock(ctx context.Context, restaurantID, menuItemID uuid.UUID, qty int) error
	RestoreStock(ctx context.Context, restaurantID, menuItemID uuid.UUID, qty int) error

	LockTable(ctx context.Context, restaurantID, tableID uuid.UUID) (*model.Table, error)
	// OccupyTable returns ErrTableTaken when the table is not available.
	OccupyTable(ctx context.Context, restaurantID, tableID, orderID uuid.UUID) error
	// ReleaseTable is a no-op unless the table still points at orderID.
	ReleaseTable(ctx context.Context, restaurantID, tableID, orderID uuid.UUID) error

	// NextOrderSequence returns the next per-restaurant order counter.
	NextOrderSequence(ctx context.Context, restaurantID uuid.UUID) (int64, error)
	InsertOrder(ctx context.Context, o *model.Order) error
	InsertKOT(ctx context.Context, k *model.KOT) error

	LockOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (*model.Order, error)
	SetOrderStatus(ctx context.Context, restaurantID, orderID uuid.UUID, status model.OrderStatus, at time.Time) error
	LockKOT(ctx context.Context, restaurantID, kotID uuid.UUID) (*model.KOT, error)
	SetKOTStatus(ctx context.Context, restaurantID, kotID uuid.UUID, status model.KOTStatus, at time.Time) error
	AppendStatusLog(ctx context.Context, c *model.StatusChange) error
}

// WithTx runs fn in a single transaction. The transaction commits only if
// fn returns nil; any error rolls everything back.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(OrderTx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return translate(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&sqlOrderTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return translate(err)
	}
	committed = true
	return nil
}

type sqlOrderTx struct {
	tx *sql.Tx
}

func (t *sqlOrderTx) LockMenuItems(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*model.MenuItem, error) {
	return menuItemsByID(ctx, t.tx, restaurantID, ids, true)
}

func (t *sqlOrderTx) DecrementStock(ctx context.Context, restaurantID, menuItemID uuid.UUID, qty int) error {
	return decrementStock(ctx, t.tx, restaurantID, menuItemID, qty)
}

func (t *sqlOrderTx) RestoreStock(ctx context.Context, restaurantID, menuItemID uuid.UUID, qty int) error {
	return restoreStock(ctx, t.tx, restaurantID, menuItemID, qty)
}

func (t *sqlOrderTx) LockTable(ctx context.Context, restaurantID, tableID uuid.UUID) (*model.Table, error) {
	return tableByID(ctx, t.tx, restaurantID, tableID, true)
}

func (t *sqlOrderTx) OccupyTable(ctx context.Context, restaurantID, tableID, orderID uuid.UUID) error {
	return occupyTable(ctx, t.tx, restaurantID, tableID, orderID)
}

func (t *sqlOrderTx) ReleaseTable(ctx context.Context, restaurantID, tableID, orderID uuid.UUID) error {
	return releaseTable(ctx, t.tx, restaurantID, tableID, orderID)
}

// NextOrderSequence bumps order_sequences with the LAST_INSERT_ID(expr)
// idiom so the new value comes back in the OK packet without a second read.
// The row lock is held until the surrounding transaction ends.
func (t *sqlOrderTx) NextOrderSequence(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO order_sequences (restaurant_id, next_value) VALUES (?, LAST_INSERT_ID(1))
		 ON DUPLICATE KEY UPDATE next_value = LAST_INSERT_ID(next_value + 1)`, restaurantID)
	if err != nil {
		return 0, translate(err)
	}
	n, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (t *sqlOrderTx) InsertOrder(ctx context.Context, o *model.Order) error {
	var name, phone, addr sql.NullString
	if o.Customer != nil {
		name, phone, addr = nullString(o.Customer.Name), nullString(o.Customer.Phone), nullString(o.Customer.Address)
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO orders (id, order_number, type, table_id, customer_name, customer_phone, customer_address,
		                     subtotal, tax, service_charge, discount, total, status, staff_id, restaurant_id,
		                     created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OrderNumber, o.Type, o.TableID, name, phone, addr,
		o.Subtotal, o.Tax, o.ServiceCharge, o.Discount, o.Total, o.Status, o.StaffID, o.RestaurantID,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", translate(err))
	}
	if len(o.Items) == 0 {
		return nil
	}
	q := `INSERT INTO order_items (id, order_id, line_no, menu_item_id, quantity, price, special_instructions) VALUES `
	args := make([]any, 0, len(o.Items)*7)
	for i, it := range o.Items {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, it.ID, o.ID, i+1, it.MenuItemID, it.Quantity, it.Price, nullString(it.SpecialInstructions))
	}
	if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert order items: %w", translate(err))
	}
	return nil
}

func (t *sqlOrderTx) InsertKOT(ctx context.Context, k *model.KOT) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO kots (id, order_id, order_number, table_number, type, status, restaurant_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.OrderID, k.OrderNumber, k.TableNumber, k.Type, k.Status, k.RestaurantID, k.CreatedAt, k.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert kot: %w", translate(err))
	}
	if len(k.Items) == 0 {
		return nil
	}
	q := `INSERT INTO kot_items (id, kot_id, line_no, menu_item_id, quantity, price, special_instructions) VALUES `
	args := make([]any, 0, len(k.Items)*7)
	for i, it := range k.Items {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, it.ID, k.ID, i+1, it.MenuItemID, it.Quantity, it.Price, nullString(it.SpecialInstructions))
	}
	if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert kot items: %w", translate(err))
	}
	return nil
}

func (t *sqlOrderTx) LockOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (*model.Order, error) {
	return orderByID(ctx, t.tx, restaurantID, orderID, true)
}

func (t *sqlOrderTx) SetOrderStatus(ctx context.Context, restaurantID, orderID uuid.UUID, status model.OrderStatus, at time.Time) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND restaurant_id = ?`,
		status, at, orderID, restaurantID)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}

func (t *sqlOrderTx) LockKOT(ctx context.Context, restaurantID, kotID uuid.UUID) (*model.KOT, error) {
	return kotWhere(ctx, t.tx, `id = ? AND restaurant_id = ?`, true, kotID, restaurantID)
}

func (t *sqlOrderTx) SetKOTStatus(ctx context.Context, restaurantID, kotID uuid.UUID, status model.KOTStatus, at time.Time) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE kots SET status = ?, updated_at = ? WHERE id = ? AND restaurant_id = ?`,
		status, at, kotID, restaurantID)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}

func (t *sqlOrderTx) AppendStatusLog(ctx context.Context, c *model.StatusChange) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO order_status_log (id, order_id, restaurant_id, from_status, to_status, changed_by, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OrderID, c.RestaurantID, nullString(string(c.From)), c.To, c.ChangedBy, c.Source, c.CreatedAt)
	return translate(err)
}
