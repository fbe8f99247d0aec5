package service

import (
	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Identity is the authenticated caller on whose behalf an operation runs.
// RestaurantID is the tenant the request acts on; for super admins it comes
// from the X-Restaurant-ID header.
type Identity struct {
	UserID       uuid.UUID
	Role         string
	RestaurantID uuid.UUID
}

// IsSuperAdmin reports whether the caller may act across tenants.
func (id Identity) IsSuperAdmin() bool { return id.Role == model.RoleSuperAdmin }
