package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Staff is an employee record. It is not a login account; see User.
type Staff struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Role         string          `json:"role"`
	Salary       decimal.Decimal `json:"salary"`
	Active       bool            `json:"active"`
	HireDate     time.Time       `json:"hire_date"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
