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
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// OrderWorkflow is implemented by *service.OrderService.
type OrderWorkflow interface {
	CreateOrder(ctx context.Context, id service.Identity, d service.OrderDraft) (*model.Order, error)
	GetOrder(ctx context.Context, id service.Identity, orderID uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, id service.Identity, f model.OrderFilter) ([]*model.Order, error)
	OrderHistory(ctx context.Context, id service.Identity, orderID uuid.UUID) ([]model.StatusChange, error)
	UpdateOrderStatus(ctx context.Context, id service.Identity, orderID uuid.UUID, target model.OrderStatus) (*model.Order, error)
	GetKOT(ctx context.Context, id service.Identity, kotID uuid.UUID) (*model.KOT, error)
	GetKOTByOrder(ctx context.Context, id service.Identity, orderID uuid.UUID) (*model.KOT, error)
	ListKOTs(ctx context.Context, id service.Identity, status *model.KOTStatus) ([]*model.KOT, error)
	UpdateKOTStatus(ctx context.Context, id service.Identity, kotID uuid.UUID, target model.KOTStatus) (*model.KOT, error)
}

type OrderHandler struct {
	Orders OrderWorkflow
	Log    *zap.SugaredLogger
}

func NewOrderHandler(orders OrderWorkflow, log *zap.SugaredLogger) *OrderHandler {
	return &OrderHandler{Orders: orders, Log: log}
}

type orderItemReq struct {
	MenuItemID          uuid.UUID        `json:"menu_item_id"`
	Quantity            int              `json:"quantity"`
	Price               *decimal.Decimal `json:"price"`
	SpecialInstructions string           `json:"special_instructions"`
}

type createOrderReq struct {
	Type          model.OrderType     `json:"type"`
	TableID       *uuid.UUID          `json:"table_id"`
	Customer      *model.CustomerInfo `json:"customer_info"`
	Items         []orderItemReq      `json:"items"`
	Discount      decimal.Decimal     `json:"discount"`
	Subtotal      *decimal.Decimal    `json:"subtotal"`
	Tax           *decimal.Decimal    `json:"tax"`
	ServiceCharge *decimal.Decimal    `json:"service_charge"`
	Total         *decimal.Decimal    `json:"total"`
}

func (r createOrderReq) draft() service.OrderDraft {
	d := service.OrderDraft{
		Type:     model.OrderType(strings.ToLower(strings.TrimSpace(string(r.Type)))),
		TableID:  r.TableID,
		Customer: r.Customer,
		Discount: r.Discount,
		Totals: service.CallerTotals{
			Subtotal:      r.Subtotal,
			Tax:           r.Tax,
			ServiceCharge: r.ServiceCharge,
			Total:         r.Total,
		},
	}
	for _, it := range r.Items {
		d.Items = append(d.Items, service.DraftItem{
			MenuItemID:          it.MenuItemID,
			Quantity:            it.Quantity,
			Price:               it.Price,
			SpecialInstructions: strings.TrimSpace(it.SpecialInstructions),
		})
	}
	return d
}

type statusReq struct {
	Status string `json:"status"`
}

// Create places an order.
func (h *OrderHandler) Create(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Orders.CreateOrder(ctx, id, req.draft())
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// List returns the restaurant's orders, newest first. Filters: status,
// type, date (YYYY-MM-DD) and table_id.
func (h *OrderHandler) List(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var f model.OrderFilter
	if s := c.QueryParam("status"); s != "" {
		st := model.OrderStatus(strings.ToLower(s))
		if !st.Valid() {
			return badRequest(c, "invalid status")
		}
		f.Status = &st
	}
	if s := c.QueryParam("type"); s != "" {
		t := model.OrderType(strings.ToLower(s))
		if !t.Valid() {
			return badRequest(c, "invalid type")
		}
		f.Type = &t
	}
	if s := c.QueryParam("date"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
		f.Date = &d
	}
	if s := c.QueryParam("table_id"); s != "" {
		tid, err := uuid.Parse(s)
		if err != nil {
			return badRequest(c, "invalid table_id")
		}
		f.TableID = &tid
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	orders, err := h.Orders.ListOrders(ctx, id, f)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	o, err := h.Orders.GetOrder(ctx, id, orderID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateStatus moves an order through its lifecycle; the KOT and table
// follow inside the same transaction.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req statusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return badRequest(c, "status required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	o, err := h.Orders.UpdateOrderStatus(ctx, id, orderID, model.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status))))
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, o)
}

// History returns the status audit trail of an order, oldest first.
func (h *OrderHandler) History(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	changes, err := h.Orders.OrderHistory(ctx, id, orderID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if changes == nil {
		changes = []model.StatusChange{}
	}
	return c.JSON(http.StatusOK, changes)
}
