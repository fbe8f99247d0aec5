package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is a sellable product of a restaurant, stored in the
// `menu_items` table.
//
// Fields:
//
//	Price     – current list price; orders snapshot it per line.
//	Stock     – units left for sale, never negative. Order creation is
//	            the only automatic mutator.
//	Available – items with Available=false cannot be ordered regardless
//	            of stock.
type MenuItem struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Available    bool            `json:"available"`
	Image        *string         `json:"image,omitempty"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Orderable reports whether qty units of the item can be sold right now.
func (m *MenuItem) Orderable(qty int) bool {
	return m.Available && m.Stock >= qty
}
