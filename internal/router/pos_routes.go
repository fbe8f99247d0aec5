package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// tenantGroup is a /v1 group for endpoints that act inside one restaurant.
func tenantGroup(e *echo.Echo, opt Options) *echo.Group {
	return e.Group("/v1", chain(
		middleware.JWTAuth(opt.JWTSecret),
		middleware.RequireTenant,
		opt.RateLimit,
		opt.Cache,
	)...)
}

// RegisterOrders registers the order and kitchen ticket endpoints. Every
// role of the restaurant may take orders and move tickets.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, opt Options) {
	g := tenantGroup(e, opt)

	g.POST("/orders", o.Create)
	g.GET("/orders", o.List)
	g.GET("/orders/:id", o.Get)
	g.PUT("/orders/:id/status", o.UpdateStatus)
	g.PATCH("/orders/:id/status", o.UpdateStatus)
	g.GET("/orders/:id/history", o.History)
	g.GET("/orders/:id/kot", o.KOTForOrder)

	g.GET("/kots", o.ListKOTs)
	g.GET("/kots/:id", o.GetKOT)
	g.PUT("/kots/:id/status", o.UpdateKOTStatus)
	g.PATCH("/kots/:id/status", o.UpdateKOTStatus)
}

// RegisterFloor registers tables, menu, staff and reservations. Reads are
// open to every role; menu, table and staff writes need a manager.
func RegisterFloor(e *echo.Echo, h Handlers, opt Options) {
	g := tenantGroup(e, opt)
	managers := middleware.RequireRole(model.RoleSuperAdmin, model.RoleAdmin, model.RoleManager)

	g.GET("/tables", h.Tables.List)
	g.GET("/tables/:id", h.Tables.Get)
	g.POST("/tables", h.Tables.Create, managers)
	g.PUT("/tables/:id", h.Tables.Update, managers)
	g.PATCH("/tables/:id", h.Tables.Update, managers)
	g.DELETE("/tables/:id", h.Tables.Delete, managers)

	g.GET("/menu", h.Menu.List)
	g.GET("/menu/categories", h.Menu.Categories)
	g.GET("/menu/:id", h.Menu.Get)
	g.POST("/menu", h.Menu.Create, managers)
	g.PUT("/menu/:id", h.Menu.Update, managers)
	g.PATCH("/menu/:id", h.Menu.Update, managers)
	g.DELETE("/menu/:id", h.Menu.Delete, managers)

	g.GET("/staff", h.Staff.List)
	g.POST("/staff", h.Staff.Create, managers)
	g.PUT("/staff/:id", h.Staff.Update, managers)
	g.DELETE("/staff/:id", h.Staff.Delete, managers)

	g.GET("/reservations", h.Reservations.List)
	g.POST("/reservations", h.Reservations.Create)
	g.PUT("/reservations/:id", h.Reservations.Update)
	g.DELETE("/reservations/:id", h.Reservations.Delete)
}
