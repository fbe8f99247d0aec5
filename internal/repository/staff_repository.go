package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// StaffRepo stores employee records of a restaurant.
type StaffRepo struct {
	db *sql.DB
}

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

const staffColumns = `id, name, email, phone, role, salary, active, hire_date, restaurant_id, created_at, updated_at`

func scanStaff(row interface{ Scan(...any) error }) (*model.Staff, error) {
	var s model.Staff
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Role, &s.Salary, &s.Active,
		&s.HireDate, &s.RestaurantID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StaffRepo) List(ctx context.Context, restaurantID uuid.UUID) ([]*model.Staff, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE restaurant_id = ? ORDER BY created_at DESC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StaffRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.Staff, error) {
	s, err := scanStaff(r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE id = ? AND restaurant_id = ?`, id, restaurantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// Create inserts a staff member. A second record with the same email in the
// restaurant yields ErrDuplicate.
func (r *StaffRepo) Create(ctx context.Context, s *model.Staff) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (id, name, email, phone, role, salary, active, hire_date, restaurant_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, s.Phone, s.Role, s.Salary, s.Active, s.HireDate.Format("2006-01-02"), s.RestaurantID)
	if err != nil {
		return translate(err)
	}
	created, err := r.GetByID(ctx, s.RestaurantID, s.ID)
	if err != nil {
		return err
	}
	*s = *created
	return nil
}

func (r *StaffRepo) Update(ctx context.Context, s *model.Staff) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff SET name = ?, email = ?, phone = ?, role = ?, salary = ?, active = ?, hire_date = ?
		 WHERE id = ? AND restaurant_id = ?`,
		s.Name, s.Email, s.Phone, s.Role, s.Salary, s.Active, s.HireDate.Format("2006-01-02"), s.ID, s.RestaurantID)
	if err != nil {
		return translate(err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, s.RestaurantID, s.ID)
	if err != nil {
		return err
	}
	*s = *updated
	return nil
}

func (r *StaffRepo) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = ? AND restaurant_id = ?`, id, restaurantID)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}
