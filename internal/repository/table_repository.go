package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// TableRepo stores dining tables. Occupancy changes driven by orders go
// through the transactional helpers at the bottom of this file; the CRUD
// methods never set or clear current_order_id.
type TableRepo struct {
	db *sql.DB
}

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableSelect = `SELECT t.id, t.number, t.capacity, t.location, t.status, t.current_order_id,
	o.order_number, t.restaurant_id, t.created_at, t.updated_at
	FROM tables t
	LEFT JOIN orders o ON o.id = t.current_order_id`

func scanTable(row interface{ Scan(...any) error }) (*model.Table, error) {
	var (
		t        model.Table
		orderID  uuid.NullUUID
		orderNum sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Location, &t.Status, &orderID,
		&orderNum, &t.RestaurantID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if orderID.Valid {
		id := orderID.UUID
		t.CurrentOrderID = &id
	}
	t.CurrentOrderNumber = stringPtr(orderNum)
	return &t, nil
}

// List returns the restaurant's tables ordered by number, with the number
// of the order currently seated at each.
func (r *TableRepo) List(ctx context.Context, restaurantID uuid.UUID) ([]*model.Table, error) {
	rows, err := r.db.QueryContext(ctx, tableSelect+` WHERE t.restaurant_id = ? ORDER BY t.number ASC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TableRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.Table, error) {
	return tableByID(ctx, r.db, restaurantID, id, false)
}

func tableByID(ctx context.Context, q execQuerier, restaurantID, id uuid.UUID, lock bool) (*model.Table, error) {
	query := tableSelect + ` WHERE t.id = ? AND t.restaurant_id = ?`
	if lock {
		// lock only the table row, not the joined order
		query += ` FOR UPDATE OF t`
	}
	t, err := scanTable(q.QueryRowContext(ctx, query, id, restaurantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, translate(err)
}

// Create inserts a table. A duplicate number within the restaurant yields
// ErrDuplicate.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = model.TableAvailable
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tables (id, number, capacity, location, status, restaurant_id) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Number, t.Capacity, t.Location, t.Status, t.RestaurantID)
	if err != nil {
		return translate(err)
	}
	created, err := r.GetByID(ctx, t.RestaurantID, t.ID)
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

// Update changes number, capacity, location and status. The status may not
// move while an order holds the table; that row is left untouched and
// ErrConflict is returned.
func (r *TableRepo) Update(ctx context.Context, t *model.Table) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tables SET number = ?, capacity = ?, location = ?, status = ?
		 WHERE id = ? AND restaurant_id = ? AND (current_order_id IS NULL OR status = ?)`,
		t.Number, t.Capacity, t.Location, t.Status, t.ID, t.RestaurantID, t.Status)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, t.RestaurantID, t.ID); err != nil {
			return err
		}
		return ErrConflict
	}
	updated, err := r.GetByID(ctx, t.RestaurantID, t.ID)
	if err != nil {
		return err
	}
	*t = *updated
	return nil
}

// Delete removes a table unless an active order is seated at it.
func (r *TableRepo) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tables WHERE id = ? AND restaurant_id = ? AND current_order_id IS NULL`, id, restaurantID)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, restaurantID, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// occupyTable seats orderID at the table if it is still available.
func occupyTable(ctx context.Context, q execQuerier, restaurantID, tableID, orderID uuid.UUID) error {
	res, err := q.ExecContext(ctx,
		`UPDATE tables SET status = ?, current_order_id = ?
		 WHERE id = ? AND restaurant_id = ? AND status = ? AND current_order_id IS NULL`,
		model.TableOccupied, orderID, tableID, restaurantID, model.TableAvailable)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableTaken
	}
	return nil
}

// releaseTable frees the table only while it still points at orderID, so a
// late release never evicts a newer order.
func releaseTable(ctx context.Context, q execQuerier, restaurantID, tableID, orderID uuid.UUID) error {
	_, err := q.ExecContext(ctx,
		`UPDATE tables SET status = ?, current_order_id = NULL
		 WHERE id = ? AND restaurant_id = ? AND current_order_id = ?`,
		model.TableAvailable, tableID, restaurantID, orderID)
	return translate(err)
}
