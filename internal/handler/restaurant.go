package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// RestaurantStore is implemented by repository.RestaurantRepo.
type RestaurantStore interface {
	List(ctx context.Context, onlyID *uuid.UUID) ([]*model.Restaurant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)
	Create(ctx context.Context, r *model.Restaurant) error
	Update(ctx context.Context, r *model.Restaurant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RestaurantHandler struct {
	Restaurants RestaurantStore
	Log         *zap.SugaredLogger
}

func NewRestaurantHandler(r RestaurantStore, log *zap.SugaredLogger) *RestaurantHandler {
	return &RestaurantHandler{Restaurants: r, Log: log}
}

type restaurantReq struct {
	Name           *string    `json:"name"`
	Address        *string    `json:"address"`
	Phone          *string    `json:"phone"`
	Email          *string    `json:"email"`
	GSTNumber      *string    `json:"gst_number"`
	Currency       *string    `json:"currency"`
	CurrencySymbol *string    `json:"currency_symbol"`
	Active         *bool      `json:"active"`
	OwnerID        *uuid.UUID `json:"owner_id"`
}

func (r restaurantReq) apply(res *model.Restaurant) string {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&res.Name, r.Name)
	set(&res.Address, r.Address)
	set(&res.Phone, r.Phone)
	set(&res.Email, r.Email)
	set(&res.Currency, r.Currency)
	set(&res.CurrencySymbol, r.CurrencySymbol)
	if r.GSTNumber != nil {
		if g := strings.TrimSpace(*r.GSTNumber); g != "" {
			res.GSTNumber = &g
		} else {
			res.GSTNumber = nil
		}
	}
	if r.Active != nil {
		res.Active = *r.Active
	}
	if res.Name == "" {
		return "name required"
	}
	res.Currency = strings.ToUpper(res.Currency)
	return ""
}

// visible reports whether the caller may see restaurant rid. Super admins
// see every tenant.
func visible(id service.Identity, rid uuid.UUID) bool {
	return id.IsSuperAdmin() || id.RestaurantID == rid
}

// List returns every restaurant to a super admin and the caller's own
// restaurant to everyone else.
func (h *RestaurantHandler) List(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var only *uuid.UUID
	if !id.IsSuperAdmin() {
		rid := id.RestaurantID
		only = &rid
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Restaurants.List(ctx, only)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if list == nil {
		list = []*model.Restaurant{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RestaurantHandler) Get(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	rid, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	if !visible(id, rid) {
		return respond(c, h.Log, repository.ErrNotFound)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Restaurants.GetByID(ctx, rid)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Create registers a new tenant. Super admin only.
func (h *RestaurantHandler) Create(c echo.Context) error {
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	res := &model.Restaurant{Currency: "USD", CurrencySymbol: "$", Active: true, OwnerID: req.OwnerID}
	if msg := req.apply(res); msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Restaurants.Create(ctx, res); err != nil {
		return respond(c, h.Log, err)
	}
	h.Log.Infow("restaurant created", "restaurant_id", res.ID, "name", res.Name)
	return c.JSON(http.StatusCreated, res)
}

// Update edits the caller's own restaurant, or any restaurant for a super
// admin.
func (h *RestaurantHandler) Update(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	rid, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	if !visible(id, rid) {
		return respond(c, h.Log, repository.ErrNotFound)
	}
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Restaurants.GetByID(ctx, rid)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if msg := req.apply(res); msg != "" {
		return badRequest(c, msg)
	}
	if err := h.Restaurants.Update(ctx, res); err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete removes a tenant and, through the foreign keys, everything it
// owns. Super admin only.
func (h *RestaurantHandler) Delete(c echo.Context) error {
	rid, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Restaurants.Delete(ctx, rid); err != nil {
		return respond(c, h.Log, err)
	}
	h.Log.Infow("restaurant deleted", "restaurant_id", rid)
	return c.NoContent(http.StatusNoContent)
}
