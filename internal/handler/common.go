// Package handler holds the echo HTTP handlers. Handlers depend on narrow
// interfaces so they can be tested with in-memory fakes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// requestTimeout bounds the store calls of one request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

var errUnauthenticated = errors.New("unauthenticated")

// callerIdentity reads the identity JWTAuth stored in the context.
func callerIdentity(c echo.Context) (service.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return service.Identity{}, errUnauthenticated
	}
	return id, nil
}

// tenant is callerIdentity for endpoints that need a restaurant scope.
func tenant(c echo.Context) (service.Identity, error) {
	id, err := callerIdentity(c)
	if err != nil {
		return id, err
	}
	if id.RestaurantID == uuid.Nil {
		return id, &service.ValidationError{Message: "restaurant scope required"}
	}
	return id, nil
}

// uuidParam parses a path parameter as a UUID.
func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, &service.ValidationError{Message: "invalid " + name}
	}
	return id, nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": "validation_error"})
}

// respond maps service and repository errors onto HTTP responses.
// Unclassified errors are logged and reported without detail.
func respond(c echo.Context, log *zap.SugaredLogger, err error) error {
	var (
		ve  *service.ValidationError
		oos *service.OutOfStockError
		ce  *service.ConflictError
		ite *service.InvalidTransitionError
		nfe *service.NotFoundError
	)
	switch {
	case errors.Is(err, errUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "code": "validation_error"})
	case errors.As(err, &oos):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":        oos.Error(),
			"code":         "out_of_stock",
			"menu_item_id": oos.MenuItemID,
			"requested":    oos.Requested,
			"available":    oos.Available,
		})
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, echo.Map{"error": ce.Message, "code": "conflict"})
	case errors.As(err, &ite):
		return c.JSON(http.StatusConflict, echo.Map{"error": ite.Error(), "code": "invalid_transition"})
	case errors.As(err, &nfe):
		return c.JSON(http.StatusNotFound, echo.Map{"error": nfe.Error(), "code": "not_found"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found", "code": "not_found"})
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists", "code": "duplicate"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflicts with current state", "code": "conflict"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warnw("request timed out", "path", c.Path(), "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	}
	log.Errorw("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
