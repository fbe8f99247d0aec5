package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/service"
)

// Context keys set by JWTAuth.
const (
	CtxUserID       = "user_id"
	CtxRole         = "role"
	CtxRestaurantID = "restaurant_id"
)

// IdentityFrom returns the authenticated caller. RestaurantID is uuid.Nil
// when no tenant was resolved for the request.
func IdentityFrom(c echo.Context) (service.Identity, bool) {
	uid, ok := c.Get(CtxUserID).(uuid.UUID)
	if !ok {
		return service.Identity{}, false
	}
	role, _ := c.Get(CtxRole).(string)
	rid, _ := c.Get(CtxRestaurantID).(uuid.UUID)
	return service.Identity{UserID: uid, Role: role, RestaurantID: rid}, true
}

// userKey identifies the caller for rate limiting, "anon" before auth.
func userKey(c echo.Context) string {
	if uid, ok := c.Get(CtxUserID).(uuid.UUID); ok {
		return uid.String()
	}
	return "anon"
}

// tenantKey is the caller's restaurant id, "none" when unresolved.
func tenantKey(c echo.Context) string {
	if rid, ok := c.Get(CtxRestaurantID).(uuid.UUID); ok && rid != uuid.Nil {
		return rid.String()
	}
	return "none"
}
