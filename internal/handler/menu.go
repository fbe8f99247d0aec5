package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// MenuStore is implemented by repository.MenuRepo.
type MenuStore interface {
	List(ctx context.Context, restaurantID uuid.UUID, category string) ([]*model.MenuItem, error)
	Categories(ctx context.Context, restaurantID uuid.UUID) ([]string, error)
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.MenuItem, error)
	Create(ctx context.Context, m *model.MenuItem) error
	Update(ctx context.Context, m *model.MenuItem) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

type MenuHandler struct {
	Menu MenuStore
	Log  *zap.SugaredLogger
}

func NewMenuHandler(m MenuStore, log *zap.SugaredLogger) *MenuHandler {
	return &MenuHandler{Menu: m, Log: log}
}

type menuReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Available   *bool            `json:"available"`
	Image       *string          `json:"image"`
}

func (r menuReq) apply(m *model.MenuItem) string {
	if r.Name != nil {
		m.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		m.Description = strings.TrimSpace(*r.Description)
	}
	if r.Category != nil {
		m.Category = *r.Category
	}
	if r.Price != nil {
		m.Price = *r.Price
	}
	if r.Stock != nil {
		m.Stock = *r.Stock
	}
	if r.Available != nil {
		m.Available = *r.Available
	}
	if r.Image != nil {
		if img := strings.TrimSpace(*r.Image); img != "" {
			m.Image = &img
		} else {
			m.Image = nil
		}
	}
	switch {
	case m.Name == "":
		return "name required"
	case strings.TrimSpace(m.Category) == "":
		return "category required"
	case m.Price.IsNegative():
		return "price must not be negative"
	case m.Stock < 0:
		return "stock must not be negative"
	}
	return ""
}

// List returns the menu, optionally narrowed by ?category=.
func (h *MenuHandler) List(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Menu.List(ctx, id.RestaurantID, strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		return respond(c, h.Log, err)
	}
	if items == nil {
		items = []*model.MenuItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MenuHandler) Categories(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cats, err := h.Menu.Categories(ctx, id.RestaurantID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if cats == nil {
		cats = []string{}
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *MenuHandler) Get(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	itemID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.Menu.GetByID(ctx, id.RestaurantID, itemID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Create adds a menu item. New items are available unless the body says
// otherwise.
func (h *MenuHandler) Create(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req menuReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Price == nil {
		return badRequest(c, "price required")
	}
	m := &model.MenuItem{RestaurantID: id.RestaurantID, Available: true}
	if msg := req.apply(m); msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Menu.Create(ctx, m); err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MenuHandler) Update(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	itemID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req menuReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.Menu.GetByID(ctx, id.RestaurantID, itemID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if msg := req.apply(m); msg != "" {
		return badRequest(c, msg)
	}
	if err := h.Menu.Update(ctx, m); err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MenuHandler) Delete(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	itemID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Menu.Delete(ctx, id.RestaurantID, itemID); err != nil {
		return respond(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
