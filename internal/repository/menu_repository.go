package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// MenuRepo provides CRUD for menu items and the stock ledger primitives
// used by order creation. Every query is scoped by restaurant id.
type MenuRepo struct {
	db *sql.DB
}

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

const menuColumns = `id, name, COALESCE(description, ''), category, price, stock, available, image,
	restaurant_id, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...any) error }) (*model.MenuItem, error) {
	var (
		m     model.MenuItem
		image sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Category, &m.Price, &m.Stock,
		&m.Available, &image, &m.RestaurantID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Image = stringPtr(image)
	return &m, nil
}

// List returns the restaurant's menu ordered by category then name. An
// empty category returns every item.
func (r *MenuRepo) List(ctx context.Context, restaurantID uuid.UUID, category string) ([]*model.MenuItem, error) {
	q := `SELECT ` + menuColumns + ` FROM menu_items WHERE restaurant_id = ?`
	args := []any{restaurantID}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY category, name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Categories returns the distinct categories of the restaurant's menu.
func (r *MenuRepo) Categories(ctx context.Context, restaurantID uuid.UUID) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM menu_items WHERE restaurant_id = ? ORDER BY category`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *MenuRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.MenuItem, error) {
	m, err := scanMenuItem(r.db.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id = ? AND restaurant_id = ?`, id, restaurantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// GetByIDs loads the given items without locking. Ids that do not exist in
// the restaurant are simply absent from the result.
func (r *MenuRepo) GetByIDs(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*model.MenuItem, error) {
	return menuItemsByID(ctx, r.db, restaurantID, ids, false)
}

// menuItemsByID is shared by the plain and the locking read. Rows are
// requested in id order so concurrent lockers acquire them in the same
// sequence.
func menuItemsByID(ctx context.Context, q execQuerier, restaurantID uuid.UUID, ids []uuid.UUID, lock bool) (map[uuid.UUID]*model.MenuItem, error) {
	out := make(map[uuid.UUID]*model.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + menuColumns + ` FROM menu_items WHERE restaurant_id = ? AND id IN (` +
		placeholders(len(ids)) + `) ORDER BY id`
	if lock {
		query += ` FOR UPDATE`
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, restaurantID)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, translate(rows.Err())
}

// Create inserts a menu item. ID and timestamps are filled in.
func (r *MenuRepo) Create(ctx context.Context, m *model.MenuItem) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Category = normalizeCategory(m.Category)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (id, name, description, category, price, stock, available, image, restaurant_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, nullString(m.Description), m.Category, m.Price, m.Stock, m.Available,
		m.Image, m.RestaurantID)
	if err != nil {
		return translate(err)
	}
	created, err := r.GetByID(ctx, m.RestaurantID, m.ID)
	if err != nil {
		return err
	}
	*m = *created
	return nil
}

// Update overwrites the editable fields of an item, stock included. Manual
// stock edits are the menu manager's prerogative; only order creation
// decrements automatically.
func (r *MenuRepo) Update(ctx context.Context, m *model.MenuItem) error {
	m.Category = normalizeCategory(m.Category)
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items
		 SET name = ?, description = ?, category = ?, price = ?, stock = ?, available = ?, image = ?
		 WHERE id = ? AND restaurant_id = ?`,
		m.Name, nullString(m.Description), m.Category, m.Price, m.Stock, m.Available, m.Image,
		m.ID, m.RestaurantID)
	if err != nil {
		return translate(err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, m.RestaurantID, m.ID)
	if err != nil {
		return err
	}
	*m = *updated
	return nil
}

func (r *MenuRepo) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM menu_items WHERE id = ? AND restaurant_id = ?`, id, restaurantID)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}

// decrementStock removes qty units only if that many remain. A miss means
// another order drained the item first.
func decrementStock(ctx context.Context, q execQuerier, restaurantID, id uuid.UUID, qty int) error {
	res, err := q.ExecContext(ctx,
		`UPDATE menu_items SET stock = stock - ? WHERE id = ? AND restaurant_id = ? AND stock >= ?`,
		qty, id, restaurantID, qty)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStockExhausted
	}
	return nil
}

func restoreStock(ctx context.Context, q execQuerier, restaurantID, id uuid.UUID, qty int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE menu_items SET stock = stock + ? WHERE id = ? AND restaurant_id = ?`,
		qty, id, restaurantID)
	return translate(err)
}

// normalizeCategory trims the category and falls back to "Uncategorized".
func normalizeCategory(c string) string {
	if c = strings.TrimSpace(c); c == "" {
		return "Uncategorized"
	}
	return c
}
