package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// ValidationError reports a malformed request or an unmet precondition that
// the caller can fix, such as an unavailable table.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// OutOfStockError names the menu item that is unavailable or short.
type OutOfStockError struct {
	MenuItemID uuid.UUID
	Name       string
	Requested  int
	Available  int
}

func (e *OutOfStockError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s is out of stock", e.Name)
	}
	return fmt.Sprintf("menu item %s is out of stock", e.MenuItemID)
}

// ConflictError means a concurrent request changed the state this one
// depended on. Retrying with fresh data may succeed.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidTransitionError is returned for a status change the transition
// table does not allow.
type InvalidTransitionError struct {
	Entity string // "order" or "kot"
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("cannot move %s from %s to %s", e.Entity, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func orderTransitionError(from, to model.OrderStatus) error {
	return &InvalidTransitionError{Entity: "order", From: string(from), To: string(to)}
}

func kotTransitionError(from, to model.KOTStatus) error {
	return &InvalidTransitionError{Entity: "kot", From: string(from), To: string(to)}
}

// NotFoundError reports a missing entity, including entities of another
// restaurant.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}
