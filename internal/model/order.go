package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType is the fulfilment mode of an order.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeaway || t == OrderTypeDelivery
}

// CustomerInfo identifies the customer of a takeaway or delivery order.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Order is the aggregate root of the order workflow and mirrors a row in
// the `orders` table plus its `order_items` children. Monetary fields are
// computed once at creation and persisted; they are never recomputed from
// the live menu.
type Order struct {
	ID            uuid.UUID       `json:"id"`                     // orders.id
	OrderNumber   string          `json:"order_number"`           // orders.order_number, unique per restaurant
	Type          OrderType       `json:"type"`                   // orders.type
	TableID       *uuid.UUID      `json:"table_id,omitempty"`     // orders.table_id (dine-in only)
	TableNumber   *int            `json:"table_number,omitempty"` // joined from tables for display
	Customer      *CustomerInfo   `json:"customer_info,omitempty"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	StaffID       uuid.UUID       `json:"staff_id"`
	RestaurantID  uuid.UUID       `json:"restaurant_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem is a priced line of an order. Price is the snapshot taken when
// the order was placed.
type OrderItem struct {
	ID                  uuid.UUID       `json:"id"`
	OrderID             uuid.UUID       `json:"order_id"`
	MenuItemID          uuid.UUID       `json:"menu_item_id"`
	MenuItemName        string          `json:"menu_item_name,omitempty"`
	Quantity            int             `json:"quantity"`
	Price               decimal.Decimal `json:"price"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// LineTotal returns quantity × price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the line totals of the order.
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// OrderFilter narrows order listings. Nil fields are ignored.
type OrderFilter struct {
	Status  *OrderStatus
	Type    *OrderType
	Date    *time.Time // calendar day in UTC
	TableID *uuid.UUID
}

// StatusChange is one row of the order status audit trail.
type StatusChange struct {
	ID           uuid.UUID   `json:"id"`
	OrderID      uuid.UUID   `json:"order_id"`
	RestaurantID uuid.UUID   `json:"restaurant_id"`
	From         OrderStatus `json:"from_status,omitempty"`
	To           OrderStatus `json:"to_status"`
	ChangedBy    uuid.UUID   `json:"changed_by"`
	Source       string      `json:"source"` // create | order | kot
	CreatedAt    time.Time   `json:"created_at"`
}
