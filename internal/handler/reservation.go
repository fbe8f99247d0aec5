package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// ReservationStore is implemented by repository.ReservationRepo.
type ReservationStore interface {
	List(ctx context.Context, restaurantID uuid.UUID, f repository.ReservationFilter) ([]*model.Reservation, error)
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.Reservation, error)
	Create(ctx context.Context, r *model.Reservation) error
	Update(ctx context.Context, r *model.Reservation) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

// TableLookup resolves a table within a restaurant.
type TableLookup interface {
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.Table, error)
}

type ReservationHandler struct {
	Reservations ReservationStore
	Tables       TableLookup
	Log          *zap.SugaredLogger
}

func NewReservationHandler(r ReservationStore, t TableLookup, log *zap.SugaredLogger) *ReservationHandler {
	return &ReservationHandler{Reservations: r, Tables: t, Log: log}
}

type reservationReq struct {
	CustomerName    *string    `json:"customer_name"`
	CustomerPhone   *string    `json:"customer_phone"`
	Email           *string    `json:"email"`
	TableID         *uuid.UUID `json:"table_id"`
	Date            *string    `json:"date"`
	Time            *string    `json:"time"`
	PartySize       *int       `json:"party_size"`
	Status          *string    `json:"status"`
	SpecialRequests *string    `json:"special_requests"`
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (r reservationReq) apply(res *model.Reservation) string {
	if r.CustomerName != nil {
		res.CustomerName = strings.TrimSpace(*r.CustomerName)
	}
	if r.CustomerPhone != nil {
		res.CustomerPhone = strings.TrimSpace(*r.CustomerPhone)
	}
	if r.Email != nil {
		res.Email = optional(r.Email)
	}
	if r.SpecialRequests != nil {
		res.SpecialRequests = optional(r.SpecialRequests)
	}
	if r.TableID != nil {
		res.TableID = *r.TableID
	}
	if r.Date != nil {
		res.Date = strings.TrimSpace(*r.Date)
	}
	if r.Time != nil {
		res.Time = strings.TrimSpace(*r.Time)
	}
	if r.PartySize != nil {
		res.PartySize = *r.PartySize
	}
	if r.Status != nil {
		st := model.ReservationStatus(strings.ToLower(strings.TrimSpace(*r.Status)))
		if !st.Valid() {
			return "invalid status"
		}
		res.Status = st
	}
	switch {
	case res.CustomerName == "":
		return "customer_name required"
	case res.CustomerPhone == "":
		return "customer_phone required"
	case res.TableID == uuid.Nil:
		return "table_id required"
	case res.PartySize <= 0:
		return "party_size must be positive"
	}
	if _, err := time.Parse("2006-01-02", res.Date); err != nil {
		return "date must be YYYY-MM-DD"
	}
	if _, err := time.Parse("15:04", res.Time); err != nil {
		return "time must be HH:MM"
	}
	return ""
}

// checkTable verifies the table belongs to the restaurant and seats the party.
func (h *ReservationHandler) checkTable(ctx context.Context, res *model.Reservation) (string, error) {
	t, err := h.Tables.GetByID(ctx, res.RestaurantID, res.TableID)
	if errors.Is(err, repository.ErrNotFound) {
		return "unknown table", nil
	}
	if err != nil {
		return "", err
	}
	if res.PartySize > t.Capacity {
		return "party_size exceeds table capacity", nil
	}
	return "", nil
}

// List supports ?status= and ?date=YYYY-MM-DD.
func (h *ReservationHandler) List(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var f repository.ReservationFilter
	if s := c.QueryParam("status"); s != "" {
		f.Status = model.ReservationStatus(strings.ToLower(s))
		if !f.Status.Valid() {
			return badRequest(c, "invalid status")
		}
	}
	if s := c.QueryParam("date"); s != "" {
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
		f.Date = s
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Reservations.List(ctx, id.RestaurantID, f)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if list == nil {
		list = []*model.Reservation{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) Create(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	res := &model.Reservation{RestaurantID: id.RestaurantID, Status: model.ReservationPending}
	if msg := req.apply(res); msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if msg, err := h.checkTable(ctx, res); err != nil || msg != "" {
		if err != nil {
			return respond(c, h.Log, err)
		}
		return badRequest(c, msg)
	}
	if err := h.Reservations.Create(ctx, res); err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	resID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Reservations.GetByID(ctx, id.RestaurantID, resID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if msg := req.apply(res); msg != "" {
		return badRequest(c, msg)
	}
	if msg, err := h.checkTable(ctx, res); err != nil || msg != "" {
		if err != nil {
			return respond(c, h.Log, err)
		}
		return badRequest(c, msg)
	}
	if err := h.Reservations.Update(ctx, res); err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	resID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Reservations.Delete(ctx, id.RestaurantID, resID); err != nil {
		return respond(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
