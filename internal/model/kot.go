package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// KOT is a kitchen order ticket. Each order owns exactly one ticket, created
// in the same transaction as the order. Order number, table number, type and
// items are copied so kitchen-side reads never touch billing rows.
type KOT struct {
	ID           uuid.UUID `json:"id"`
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	TableNumber  *int      `json:"table_number,omitempty"`
	Type         OrderType `json:"type"`
	Items        []KOTItem `json:"items"`
	Status       KOTStatus `json:"status"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// KOTItem is an independently owned copy of an order line.
type KOTItem struct {
	ID                  uuid.UUID       `json:"id"`
	KOTID               uuid.UUID       `json:"kot_id"`
	MenuItemID          uuid.UUID       `json:"menu_item_id"`
	MenuItemName        string          `json:"menu_item_name,omitempty"`
	Quantity            int             `json:"quantity"`
	Price               decimal.Decimal `json:"price"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// NewKOTForOrder builds the pending ticket for a freshly created order.
func NewKOTForOrder(o *Order, tableNumber *int) *KOT {
	k := &KOT{
		ID:           uuid.New(),
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		TableNumber:  tableNumber,
		Type:         o.Type,
		Status:       KOTPending,
		RestaurantID: o.RestaurantID,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.CreatedAt,
	}
	k.Items = make([]KOTItem, 0, len(o.Items))
	for _, it := range o.Items {
		k.Items = append(k.Items, KOTItem{
			ID:                  uuid.New(),
			KOTID:               k.ID,
			MenuItemID:          it.MenuItemID,
			MenuItemName:        it.MenuItemName,
			Quantity:            it.Quantity,
			Price:               it.Price,
			SpecialInstructions: it.SpecialInstructions,
		})
	}
	return k
}
