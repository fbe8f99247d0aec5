package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// RegisterAdmin registers restaurant and user administration. These routes
// do not require a tenant scope: super admins work across restaurants.
func RegisterAdmin(e *echo.Echo, h Handlers, opt Options) {
	g := e.Group("/v1", chain(
		middleware.JWTAuth(opt.JWTSecret),
		opt.RateLimit,
		opt.Cache,
	)...)
	superAdmin := middleware.RequireRole(model.RoleSuperAdmin)
	admins := middleware.RequireRole(model.RoleSuperAdmin, model.RoleAdmin)

	g.GET("/restaurants", h.Restaurants.List)
	g.GET("/restaurants/:id", h.Restaurants.Get)
	g.POST("/restaurants", h.Restaurants.Create, superAdmin)
	g.PUT("/restaurants/:id", h.Restaurants.Update, admins)
	g.DELETE("/restaurants/:id", h.Restaurants.Delete, superAdmin)

	g.GET("/users", h.Users.List, admins)
	g.POST("/users", h.Users.Create, admins)
	g.PUT("/users/:id", h.Users.Update, admins)
	g.DELETE("/users/:id", h.Users.Delete, admins)
}
