package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Kitchen endpoints share the order workflow of OrderHandler.

func (h *OrderHandler) ListKOTs(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var status *model.KOTStatus
	if s := c.QueryParam("status"); s != "" {
		st := model.KOTStatus(strings.ToLower(s))
		if !st.Valid() {
			return badRequest(c, "invalid status")
		}
		status = &st
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	kots, err := h.Orders.ListKOTs(ctx, id, status)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if kots == nil {
		kots = []*model.KOT{}
	}
	return c.JSON(http.StatusOK, kots)
}

func (h *OrderHandler) GetKOT(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	kotID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	k, err := h.Orders.GetKOT(ctx, id, kotID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, k)
}

// KOTForOrder returns the ticket spawned by an order.
func (h *OrderHandler) KOTForOrder(c echo.Context) error {
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
	k, err := h.Orders.GetKOTByOrder(ctx, id, orderID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, k)
}

// UpdateKOTStatus advances a ticket; the order is lifted along with it.
func (h *OrderHandler) UpdateKOTStatus(c echo.Context) error {
	id, err := tenant(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	kotID, err := uuidParam(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req statusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return badRequest(c, "status required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	k, err := h.Orders.UpdateKOTStatus(ctx, id, kotID, model.KOTStatus(strings.ToLower(strings.TrimSpace(req.Status))))
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, k)
}
