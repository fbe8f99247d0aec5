package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// UserRepo stores login accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = `id, name, email, password_hash, role, restaurant_id, active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u            model.User
		restaurantID uuid.NullUUID
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &restaurantID,
		&u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if restaurantID.Valid {
		id := restaurantID.UUID
		u.RestaurantID = &id
	}
	return &u, nil
}

// Create inserts a user whose password is already hashed. The email is
// normalised to lower case.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, restaurant_id, active) VALUES (?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.RestaurantID, u.Active)
	if err != nil {
		if err = translate(err); errors.Is(err, ErrDuplicate) {
			return ErrEmailExists
		}
		return err
	}
	created, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// GetByEmail fetches a user by normalised email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// ListByRestaurant returns the non super-admin users of a restaurant. A nil
// restaurant lists every tenant's users.
func (r *UserRepo) ListByRestaurant(ctx context.Context, restaurantID *uuid.UUID) ([]*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE role <> ?`
	args := []any{model.RoleSuperAdmin}
	if restaurantID != nil {
		q += ` AND restaurant_id = ?`
		args = append(args, *restaurantID)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of u and reloads it. Reusing another
// account's email yields ErrEmailExists.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password_hash = ?, role = ?, restaurant_id = ?, active = ?
		 WHERE id = ?`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.RestaurantID, u.Active, u.ID)
	if err != nil {
		if err = translate(err); errors.Is(err, ErrDuplicate) {
			return ErrEmailExists
		}
		return err
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *updated
	return nil
}

// Delete removes an account. Its refresh tokens go with it through the
// foreign key.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}
