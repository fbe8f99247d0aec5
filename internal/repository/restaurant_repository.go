package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// RestaurantRepo stores tenants. Deleting a restaurant cascades to every
// row that carries its id.
type RestaurantRepo struct {
	db *sql.DB
}

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

const restaurantColumns = `id, name, address, phone, email, gst_number, currency, currency_symbol,
	active, owner_id, created_at, updated_at`

func scanRestaurant(row interface{ Scan(...any) error }) (*model.Restaurant, error) {
	var (
		r     model.Restaurant
		gst   sql.NullString
		owner uuid.NullUUID
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Address, &r.Phone, &r.Email, &gst, &r.Currency,
		&r.CurrencySymbol, &r.Active, &owner, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.GSTNumber = stringPtr(gst)
	if owner.Valid {
		id := owner.UUID
		r.OwnerID = &id
	}
	return &r, nil
}

// List returns all restaurants newest first, or only the given one when
// onlyID is set.
func (r *RestaurantRepo) List(ctx context.Context, onlyID *uuid.UUID) ([]*model.Restaurant, error) {
	q := `SELECT ` + restaurantColumns + ` FROM restaurants`
	var args []any
	if onlyID != nil {
		q += ` WHERE id = ?`
		args = append(args, *onlyID)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Restaurant
	for rows.Next() {
		res, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *RestaurantRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	res, err := scanRestaurant(r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

func (r *RestaurantRepo) Create(ctx context.Context, res *model.Restaurant) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO restaurants (id, name, address, phone, email, gst_number, currency, currency_symbol, active, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.Name, res.Address, res.Phone, res.Email, res.GSTNumber, res.Currency,
		res.CurrencySymbol, res.Active, res.OwnerID)
	if err != nil {
		return translate(err)
	}
	created, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = *created
	return nil
}

func (r *RestaurantRepo) Update(ctx context.Context, res *model.Restaurant) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE restaurants SET name = ?, address = ?, phone = ?, email = ?, gst_number = ?,
		        currency = ?, currency_symbol = ?, active = ?
		 WHERE id = ?`,
		res.Name, res.Address, res.Phone, res.Email, res.GSTNumber, res.Currency,
		res.CurrencySymbol, res.Active, res.ID)
	if err != nil {
		return translate(err)
	}
	if err := affectedOrNotFound(result); err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = *updated
	return nil
}

func (r *RestaurantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM restaurants WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}
