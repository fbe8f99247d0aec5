package service

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// Quote is the monetary breakdown persisted with an order.
type Quote struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
}

// CallerTotals are the optional figures a client sent along with an order.
type CallerTotals struct {
	Subtotal      *decimal.Decimal
	Tax           *decimal.Decimal
	ServiceCharge *decimal.Decimal
	Total         *decimal.Decimal
}

// pricedLine is one order line with the unit price that will be stored.
type pricedLine struct {
	Quantity int
	Price    decimal.Decimal
}

func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func withinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}

// Price computes the breakdown of an order under policy p.
//
// In verify mode the server figures are authoritative and a caller total,
// if present, must agree within tolerance. In trust mode the caller's
// figures are kept where given, but the breakdown must still add up.
func Price(p config.OrderPolicy, lines []pricedLine, discount decimal.Decimal, caller CallerTotals) (Quote, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = round2(subtotal)
	q := Quote{
		Subtotal:      subtotal,
		Tax:           round2(subtotal.Mul(p.TaxRate)),
		ServiceCharge: round2(subtotal.Mul(p.ServiceChargeRate)),
		Discount:      round2(discount),
	}

	if p.PricingMode == config.PricingTrust {
		if caller.Subtotal != nil {
			if !withinTolerance(*caller.Subtotal, subtotal, p.PriceTolerance) {
				return Quote{}, invalid("subtotal %s does not match item lines %s", caller.Subtotal.StringFixed(2), subtotal.StringFixed(2))
			}
			q.Subtotal = round2(*caller.Subtotal)
		}
		if caller.Tax != nil {
			q.Tax = round2(*caller.Tax)
		}
		if caller.ServiceCharge != nil {
			q.ServiceCharge = round2(*caller.ServiceCharge)
		}
	}

	gross := q.Subtotal.Add(q.Tax).Add(q.ServiceCharge)
	if q.Discount.GreaterThan(gross) {
		return Quote{}, invalid("discount %s exceeds order amount %s", q.Discount.StringFixed(2), gross.StringFixed(2))
	}
	q.Total = gross.Sub(q.Discount)

	if caller.Total != nil && !withinTolerance(*caller.Total, q.Total, p.PriceTolerance) {
		return Quote{}, invalid("total %s does not match computed total %s", caller.Total.StringFixed(2), q.Total.StringFixed(2))
	}
	if p.PricingMode == config.PricingTrust && caller.Total != nil {
		q.Total = round2(*caller.Total)
	}
	return q, nil
}
