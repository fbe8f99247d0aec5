package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// ReservationRepo provides CRUD for table reservations. It does not detect
// overlapping bookings.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationFilter narrows List. Zero values are ignored.
type ReservationFilter struct {
	Status model.ReservationStatus
	Date   string // YYYY-MM-DD
}

const reservationSelect = `SELECT r.id, r.customer_name, r.customer_phone, r.email, r.table_id, t.number,
	r.reservation_date, TIME_FORMAT(r.reservation_time, '%H:%i'), r.party_size, r.status, r.special_requests,
	r.restaurant_id, r.created_at, r.updated_at
	FROM reservations r
	JOIN tables t ON t.id = r.table_id`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		res      model.Reservation
		email    sql.NullString
		requests sql.NullString
		day      time.Time
	)
	if err := row.Scan(&res.ID, &res.CustomerName, &res.CustomerPhone, &email, &res.TableID, &res.TableNumber,
		&day, &res.Time, &res.PartySize, &res.Status, &requests,
		&res.RestaurantID, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	res.Date = day.Format("2006-01-02")
	res.Email = stringPtr(email)
	res.SpecialRequests = stringPtr(requests)
	return &res, nil
}

// List returns reservations newest booking first.
func (r *ReservationRepo) List(ctx context.Context, restaurantID uuid.UUID, f ReservationFilter) ([]*model.Reservation, error) {
	q := reservationSelect + ` WHERE r.restaurant_id = ?`
	args := []any{restaurantID}
	if f.Status != "" {
		q += ` AND r.status = ?`
		args = append(args, f.Status)
	}
	if f.Date != "" {
		q += ` AND r.reservation_date = ?`
		args = append(args, f.Date)
	}
	q += ` ORDER BY r.reservation_date DESC, r.reservation_time DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *ReservationRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		reservationSelect+` WHERE r.id = ? AND r.restaurant_id = ?`, id, restaurantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.Status == "" {
		res.Status = model.ReservationPending
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reservations (id, customer_name, customer_phone, email, table_id, reservation_date,
		                           reservation_time, party_size, status, special_requests, restaurant_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.CustomerName, res.CustomerPhone, res.Email, res.TableID, res.Date, res.Time,
		res.PartySize, res.Status, res.SpecialRequests, res.RestaurantID)
	if err != nil {
		return translate(err)
	}
	created, err := r.GetByID(ctx, res.RestaurantID, res.ID)
	if err != nil {
		return err
	}
	*res = *created
	return nil
}

func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET customer_name = ?, customer_phone = ?, email = ?, table_id = ?,
		        reservation_date = ?, reservation_time = ?, party_size = ?, status = ?, special_requests = ?
		 WHERE id = ? AND restaurant_id = ?`,
		res.CustomerName, res.CustomerPhone, res.Email, res.TableID, res.Date, res.Time,
		res.PartySize, res.Status, res.SpecialRequests, res.ID, res.RestaurantID)
	if err != nil {
		return translate(err)
	}
	if err := affectedOrNotFound(result); err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, res.RestaurantID, res.ID)
	if err != nil {
		return err
	}
	*res = *updated
	return nil
}

func (r *ReservationRepo) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ? AND restaurant_id = ?`, id, restaurantID)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}
