package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the booking state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationSeated,
		ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

// Reservation books a table for a party at a given date and time.
//
// Fields:
//
//	Date   – calendar day of the booking (YYYY-MM-DD).
//	Time   – local time of day (HH:MM).
//	Status – pending, confirmed, seated, completed or cancelled.
type Reservation struct {
	ID              uuid.UUID         `json:"id"`
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	Email           *string           `json:"email,omitempty"`
	TableID         uuid.UUID         `json:"table_id"`
	TableNumber     int               `json:"table_number,omitempty"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	PartySize       int               `json:"party_size"`
	Status          ReservationStatus `json:"status"`
	SpecialRequests *string           `json:"special_requests,omitempty"`
	RestaurantID    uuid.UUID         `json:"restaurant_id"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
