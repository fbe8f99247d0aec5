// Package router registers the HTTP routes and their middleware chains.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Auth         *handler.AuthHandler
	Orders       *handler.OrderHandler
	Tables       *handler.TableHandler
	Menu         *handler.MenuHandler
	Restaurants  *handler.RestaurantHandler
	Staff        *handler.StaffHandler
	Reservations *handler.ReservationHandler
	Users        *handler.UserHandler
}

// Options carries the cross-cutting middleware. Nil middlewares are skipped.
type Options struct {
	JWTSecret string
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
	DB        handler.Pinger
}

// chain drops nil entries so optional middleware can be passed unconditionally.
func chain(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := mw[:0]
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Register wires every route onto e.
func Register(e *echo.Echo, h Handlers, opt Options) {
	e.GET("/healthz", handler.Health(opt.DB))
	RegisterAuth(e, h.Auth, opt)
	RegisterOrders(e, h.Orders, opt)
	RegisterFloor(e, h, opt)
	RegisterAdmin(e, h, opt)
}

// RegisterAuth registers the token endpoints. Login and refresh need no
// session; logout and /v1/me do.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, opt Options) {
	g := e.Group("/v1/auth", chain(opt.RateLimit)...)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	g.POST("/logout", a.Logout, middleware.JWTAuth(opt.JWTSecret))
	e.GET("/v1/me", a.Me, chain(middleware.JWTAuth(opt.JWTSecret), opt.RateLimit)...)
}
