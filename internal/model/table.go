package model

import (
	"time"

	"github.com/google/uuid"
)

// TableStatus is the occupancy state of a dining table.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// Valid reports whether s is a known table status.
func (s TableStatus) Valid() bool {
	return s == TableAvailable || s == TableOccupied || s == TableReserved
}

// Table is a physical seating unit. CurrentOrderID is a weak back-reference
// to the active dine-in order and is set only while Status is occupied.
type Table struct {
	ID                 uuid.UUID   `json:"id"`
	Number             int         `json:"number"`
	Capacity           int         `json:"capacity"`
	Location           string      `json:"location"`
	Status             TableStatus `json:"status"`
	CurrentOrderID     *uuid.UUID  `json:"current_order_id,omitempty"`
	CurrentOrderNumber *string     `json:"current_order_number,omitempty"`
	RestaurantID       uuid.UUID   `json:"restaurant_id"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}
