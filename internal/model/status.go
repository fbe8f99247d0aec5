package model

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderDelivered OrderStatus = "delivered"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderPreparing, OrderReady, OrderServed,
	OrderDelivered, OrderCompleted, OrderCancelled,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Active reports whether an order in state s still holds its table.
func (s OrderStatus) Active() bool {
	return s == OrderPending || s == OrderPreparing || s == OrderReady
}

// ReleasesTable reports whether entering s frees the order's table.
func (s OrderStatus) ReleasesTable() bool {
	switch s {
	case OrderServed, OrderDelivered, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// KOTStatus is the kitchen-side state of a ticket. It is a strict subset of
// OrderStatus and only ever moves forward.
type KOTStatus string

const (
	KOTPending   KOTStatus = "pending"
	KOTPreparing KOTStatus = "preparing"
	KOTReady     KOTStatus = "ready"
)

// Valid reports whether s is a known KOT status.
func (s KOTStatus) Valid() bool {
	return s == KOTPending || s == KOTPreparing || s == KOTReady
}

// orderFlow builds the transition table for one fulfilment branch. The
// fulfilled state is "served" for dine-in and takeaway and "delivered" for
// delivery orders. The floor may skip kitchen steps up to fulfilment;
// completed is only reachable from the fulfilled state.
func orderFlow(fulfilled OrderStatus) map[OrderStatus][]OrderStatus {
	return map[OrderStatus][]OrderStatus{
		OrderPending:   {OrderPreparing, OrderReady, fulfilled, OrderCancelled},
		OrderPreparing: {OrderReady, fulfilled, OrderCancelled},
		OrderReady:     {fulfilled, OrderCancelled},
		fulfilled:      {OrderCompleted, OrderCancelled},
	}
}

// OrderTransitions is the legal order-status graph keyed by order type and
// current status. Terminal states have no entry.
var OrderTransitions = map[OrderType]map[OrderStatus][]OrderStatus{
	OrderTypeDineIn:   orderFlow(OrderServed),
	OrderTypeTakeaway: orderFlow(OrderServed),
	OrderTypeDelivery: orderFlow(OrderDelivered),
}

// KOTTransitions is the legal kitchen-ticket graph. Skipping "preparing" is
// allowed, regressing is not.
var KOTTransitions = map[KOTStatus][]KOTStatus{
	KOTPending:   {KOTPreparing, KOTReady},
	KOTPreparing: {KOTReady},
}

// CanTransitionOrder reports whether an order of type t may move from one
// status to another.
func CanTransitionOrder(t OrderType, from, to OrderStatus) bool {
	for _, next := range OrderTransitions[t][from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionKOT reports whether a ticket may move from one status to another.
func CanTransitionKOT(from, to KOTStatus) bool {
	for _, next := range KOTTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PropagateKOTStatus returns the order status implied by a ticket entering
// kot, given the order's current status. The boolean is false when the order
// must stay where it is, which keeps kitchen updates from regressing an order
// the floor has already advanced.
func PropagateKOTStatus(kot KOTStatus, current OrderStatus) (OrderStatus, bool) {
	switch kot {
	case KOTPreparing:
		if current == OrderPending {
			return OrderPreparing, true
		}
	case KOTReady:
		if current == OrderPending || current == OrderPreparing {
			return OrderReady, true
		}
	}
	return current, false
}
