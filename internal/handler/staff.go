package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// StaffStore is implemented by repository.StaffRepo.
type StaffStore interface {
	List(ctx context.Context, restaurantID uuid.UUID) ([]*model.Staff, error)
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.Staff, error)
	Create(ctx context.Context, s *model.Staff) error
	Update(ctx context.Context, s *model.Staff) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

type StaffHandler struct {
	Staff StaffStore
	Log   *zap.SugaredLogger
}

func NewStaffHandler(s StaffStore, log *zap.SugaredLogger) *StaffHandler {
	return &StaffHandler{Staff: s, Log: log}
}

type staffReq struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email"`
	Phone    *string          `json:"phone"`
	Role     *string          `json:"role"`
	Salary   *decimal.Decimal `json:"salary"`
	Active   *bool            `json:"active"`
	HireDate *string          `json:"hire_date"` // YYYY-MM-DD
}

func (r staffReq) apply(s *model.Staff) string {
	if r.Name != nil {
		s.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		s.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.Phone != nil {
		s.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Role != nil {
		s.Role = strings.TrimSpace(*r.Role)
	}
	if r.Salary != nil {
		s.Salary = *r.Salary
	}
	if r.Active != nil {
		s.Active = *r.Active
	}
	if r.HireDate != nil {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(*r.HireDate))
		if err != nil {
			return "hire_date must be YYYY-MM-DD"
		}
		s.HireDate = d
	}
	switch {
	case s.Name == "":
		return "name required"
	case s.Email == "":
		return "email required"
	case s.Role == "":
		return "role required"
	case s.Salary.IsNegative():
		return "salary must not be negative"
	}
	return ""
}

func (h *StaffHandler) List(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Staff.List(ctx, id.RestaurantID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if list == nil {
		list = []*model.Staff{}
	}
	return c.JSON(http.StatusOK, list)
}

// Create adds an employee record. hire_date defaults to today.
func (h *StaffHandler) Create(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req staffReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	s := &model.Staff{
		RestaurantID: id.RestaurantID,
		Active:       true,
		HireDate:     time.Now().UTC().Truncate(24 * time.Hour),
	}
	if msg := req.apply(s); msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Staff.Create(ctx, s); err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *StaffHandler) Update(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	staffID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req staffReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Staff.GetByID(ctx, id.RestaurantID, staffID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if msg := req.apply(s); msg != "" {
		return badRequest(c, msg)
	}
	if err := h.Staff.Update(ctx, s); err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *StaffHandler) Delete(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	staffID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Staff.Delete(ctx, id.RestaurantID, staffID); err != nil {
		return respond(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
