package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// TableStore is implemented by repository.TableRepo.
type TableStore interface {
	List(ctx context.Context, restaurantID uuid.UUID) ([]*model.Table, error)
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*model.Table, error)
	Create(ctx context.Context, t *model.Table) error
	Update(ctx context.Context, t *model.Table) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

type TableHandler struct {
	Tables TableStore
	Log    *zap.SugaredLogger
}

func NewTableHandler(t TableStore, log *zap.SugaredLogger) *TableHandler {
	return &TableHandler{Tables: t, Log: log}
}

type tableReq struct {
	Number   *int    `json:"number"`
	Capacity *int    `json:"capacity"`
	Location *string `json:"location"`
	Status   *string `json:"status"`
}

// apply copies the set fields onto t. Occupancy is owned by the order
// workflow, so a client may never set occupied by hand.
func (r tableReq) apply(t *model.Table) string {
	if r.Number != nil {
		t.Number = *r.Number
	}
	if r.Capacity != nil {
		t.Capacity = *r.Capacity
	}
	if r.Location != nil {
		t.Location = strings.TrimSpace(*r.Location)
	}
	if r.Status != nil {
		st := model.TableStatus(strings.ToLower(strings.TrimSpace(*r.Status)))
		if !st.Valid() {
			return "invalid status"
		}
		if st == model.TableOccupied && t.Status != model.TableOccupied {
			return "tables are occupied by placing an order"
		}
		t.Status = st
	}
	if t.Number <= 0 {
		return "number must be positive"
	}
	if t.Capacity <= 0 {
		return "capacity must be positive"
	}
	return ""
}

func (h *TableHandler) List(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	tables, err := h.Tables.List(ctx, id.RestaurantID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if tables == nil {
		tables = []*model.Table{}
	}
	return c.JSON(http.StatusOK, tables)
}

func (h *TableHandler) Get(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	tableID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Tables.GetByID(ctx, id.RestaurantID, tableID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TableHandler) Create(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	t := &model.Table{RestaurantID: id.RestaurantID, Status: model.TableAvailable}
	if msg := req.apply(t); msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tables.Create(ctx, t); err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Update edits a table. Changing the status of a table an order is seated
// at is rejected with 409.
func (h *TableHandler) Update(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	tableID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Tables.GetByID(ctx, id.RestaurantID, tableID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if msg := req.apply(t); msg != "" {
		return badRequest(c, msg)
	}
	if err := h.Tables.Update(ctx, t); err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TableHandler) Delete(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	tableID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tables.Delete(ctx, id.RestaurantID, tableID); err != nil {
		return respond(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
