package service

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// demand is the aggregated quantity per menu item of one order. Several
// lines for the same item count against its stock together.
type demand struct {
	ids []uuid.UUID // first-appearance order, for stable error reporting
	qty map[uuid.UUID]int
}

func aggregateDemand(items []DraftItem) demand {
	d := demand{qty: make(map[uuid.UUID]int, len(items))}
	for _, it := range items {
		if _, seen := d.qty[it.MenuItemID]; !seen {
			d.ids = append(d.ids, it.MenuItemID)
		}
		d.qty[it.MenuItemID] += it.Quantity
	}
	return d
}

// sortedIDs returns the demanded ids in byte order, the order rows are
// locked and updated in.
func (d demand) sortedIDs() []uuid.UUID {
	ids := append([]uuid.UUID(nil), d.ids...)
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids
}

// checkStock validates demand against a menu snapshot. Missing items are a
// NotFoundError; disabled or short items an OutOfStockError.
func checkStock(d demand, menu map[uuid.UUID]*model.MenuItem) error {
	for _, id := range d.ids {
		m, ok := menu[id]
		if !ok {
			return &NotFoundError{Entity: "menu item", ID: id}
		}
		if !m.Orderable(d.qty[id]) {
			return &OutOfStockError{MenuItemID: id, Name: m.Name, Requested: d.qty[id], Available: m.Stock}
		}
	}
	return nil
}

// consumeStock locks the demanded rows, re-checks them and decrements. Any
// shortfall found here was caused by a concurrent order and is reported as
// a conflict rather than out of stock.
func consumeStock(ctx context.Context, tx repository.OrderTx, restaurantID uuid.UUID, d demand) error {
	ids := d.sortedIDs()
	locked, err := tx.LockMenuItems(ctx, restaurantID, ids)
	if err != nil {
		return err
	}
	if err := checkStock(d, locked); err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return &ConflictError{Message: "menu item was removed while the order was placed"}
		}
		var oos *OutOfStockError
		if errors.As(err, &oos) {
			return &ConflictError{Message: oos.Name + " was sold out by a concurrent order"}
		}
		return err
	}
	for _, id := range ids {
		if err := tx.DecrementStock(ctx, restaurantID, id, d.qty[id]); err != nil {
			if errors.Is(err, repository.ErrStockExhausted) {
				return &ConflictError{Message: locked[id].Name + " was sold out by a concurrent order"}
			}
			return err
		}
	}
	return nil
}

// restoreStock gives the quantities of a cancelled order back to the menu.
func restoreStock(ctx context.Context, tx repository.OrderTx, o *model.Order) error {
	d := demand{qty: map[uuid.UUID]int{}}
	for _, it := range o.Items {
		if _, seen := d.qty[it.MenuItemID]; !seen {
			d.ids = append(d.ids, it.MenuItemID)
		}
		d.qty[it.MenuItemID] += it.Quantity
	}
	for _, id := range d.sortedIDs() {
		if err := tx.RestoreStock(ctx, o.RestaurantID, id, d.qty[id]); err != nil {
			return err
		}
	}
	return nil
}
