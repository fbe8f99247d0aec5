package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

// HeaderRestaurantID lets a super admin act inside one tenant.
const HeaderRestaurantID = "X-Restaurant-ID"

// JWTAuth validates the Bearer access token and stores user id, role and
// restaurant id in the context. Tenant users are pinned to the restaurant
// in their token; super admins may select one with X-Restaurant-ID.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			uid, _ := claims.UserID()

			rid, hasTenant, err := claims.Restaurant()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			if claims.Role == model.RoleSuperAdmin {
				if h := c.Request().Header.Get(HeaderRestaurantID); h != "" {
					rid, err = uuid.Parse(h)
					if err != nil {
						return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + HeaderRestaurantID})
					}
					hasTenant = true
				}
			}

			c.Set(CtxUserID, uid)
			c.Set(CtxRole, claims.Role)
			if hasTenant {
				c.Set(CtxRestaurantID, rid)
			}
			return next(c)
		}
	}
}

// RequireTenant rejects requests that carry no restaurant scope, such as a
// super admin calling a tenant endpoint without X-Restaurant-ID.
func RequireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if rid, ok := c.Get(CtxRestaurantID).(uuid.UUID); !ok || rid == uuid.Nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant scope required"})
		}
		return next(c)
	}
}
