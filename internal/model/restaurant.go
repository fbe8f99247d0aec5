package model

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant is the tenant root. Every other entity except super-admin
// users carries its id.
type Restaurant struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	GSTNumber      *string    `json:"gst_number,omitempty"`
	Currency       string     `json:"currency"`
	CurrencySymbol string     `json:"currency_symbol"`
	Active         bool       `json:"active"`
	OwnerID        *uuid.UUID `json:"owner_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
