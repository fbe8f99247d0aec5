package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// KOTRepo reads kitchen tickets. Tickets are listed oldest first so the
// kitchen works through them in arrival order.
type KOTRepo struct {
	db *sql.DB
}

func NewKOTRepo(db *sql.DB) *KOTRepo { return &KOTRepo{db: db} }

const kotSelect = `SELECT id, order_id, order_number, table_number, type, status, restaurant_id,
	created_at, updated_at FROM kots`

func scanKOT(row interface{ Scan(...any) error }) (*model.KOT, error) {
	var (
		k        model.KOT
		tableNum sql.NullInt64
	)
	if err := row.Scan(&k.ID, &k.OrderID, &k.OrderNumber, &tableNum, &k.Type, &k.Status,
		&k.RestaurantID, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	k.TableNumber = intPtr(tableNum)
	return &k, nil
}

func (r *KOTRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.KOT, error) {
	return kotWhere(ctx, r.db, `id = ? AND restaurant_id = ?`, false, id, restaurantID)
}

func (r *KOTRepo) GetByOrderID(ctx context.Context, restaurantID, orderID uuid.UUID) (*model.KOT, error) {
	return kotWhere(ctx, r.db, `order_id = ? AND restaurant_id = ?`, false, orderID, restaurantID)
}

func kotWhere(ctx context.Context, q execQuerier, where string, lock bool, args ...any) (*model.KOT, error) {
	query := kotSelect + ` WHERE ` + where
	if lock {
		query += ` FOR UPDATE`
	}
	k, err := scanKOT(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translate(err)
	}
	items, err := kotItems(ctx, q, []uuid.UUID{k.ID})
	if err != nil {
		return nil, err
	}
	k.Items = items[k.ID]
	return k, nil
}

// List returns tickets of the restaurant, optionally narrowed to one status.
func (r *KOTRepo) List(ctx context.Context, restaurantID uuid.UUID, status *model.KOTStatus) ([]*model.KOT, error) {
	q := kotSelect + ` WHERE restaurant_id = ?`
	args := []any{restaurantID}
	if status != nil {
		q += ` AND status = ?`
		args = append(args, *status)
	}
	q += ` ORDER BY created_at ASC, order_number ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var (
		out []*model.KOT
		ids []uuid.UUID
	)
	for rows.Next() {
		k, err := scanKOT(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
		ids = append(ids, k.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	items, err := kotItems(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, k := range out {
		k.Items = items[k.ID]
	}
	return out, nil
}

func kotItems(ctx context.Context, q execQuerier, kotIDs []uuid.UUID) (map[uuid.UUID][]model.KOTItem, error) {
	out := make(map[uuid.UUID][]model.KOTItem, len(kotIDs))
	if len(kotIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(kotIDs))
	for i, id := range kotIDs {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		`SELECT ki.id, ki.kot_id, ki.menu_item_id, COALESCE(m.name, ''), ki.quantity, ki.price,
		        COALESCE(ki.special_instructions, '')
		 FROM kot_items ki
		 LEFT JOIN menu_items m ON m.id = ki.menu_item_id
		 WHERE ki.kot_id IN (`+placeholders(len(kotIDs))+`)
		 ORDER BY ki.kot_id, ki.line_no`, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	for rows.Next() {
		var it model.KOTItem
		if err := rows.Scan(&it.ID, &it.KOTID, &it.MenuItemID, &it.MenuItemName, &it.Quantity,
			&it.Price, &it.SpecialInstructions); err != nil {
			return nil, err
		}
		out[it.KOTID] = append(out[it.KOTID], it)
	}
	return out, rows.Err()
}
