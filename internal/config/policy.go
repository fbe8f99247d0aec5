package config

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Pricing modes. In verify mode the server prices every order from the menu
// and only compares the caller's total; in trust mode the caller's breakdown
// is stored after an arithmetic consistency check.
const (
	PricingVerify = "verify"
	PricingTrust  = "trust"
)

// OrderPolicy groups the business knobs of order creation and cancellation.
type OrderPolicy struct {
	TaxRate           decimal.Decimal
	ServiceChargeRate decimal.Decimal
	PriceTolerance    decimal.Decimal
	PricingMode       string
	RestockOnCancel   bool
}

// DefaultOrderPolicy returns 10% tax, 5% service charge, a one cent
// tolerance, verify pricing and no restock on cancel.
func DefaultOrderPolicy() OrderPolicy {
	return OrderPolicy{
		TaxRate:           decimal.RequireFromString("0.10"),
		ServiceChargeRate: decimal.RequireFromString("0.05"),
		PriceTolerance:    decimal.RequireFromString("0.01"),
		PricingMode:       PricingVerify,
		RestockOnCancel:   false,
	}
}

// LoadOrderPolicy reads ORDER_* variables on top of DefaultOrderPolicy.
func LoadOrderPolicy() OrderPolicy {
	p := DefaultOrderPolicy()
	p.TaxRate = envDecimal("ORDER_TAX_RATE", p.TaxRate)
	p.ServiceChargeRate = envDecimal("ORDER_SERVICE_CHARGE_RATE", p.ServiceChargeRate)
	p.PriceTolerance = envDecimal("ORDER_PRICE_TOLERANCE", p.PriceTolerance)
	p.RestockOnCancel = envBool("ORDER_RESTOCK_ON_CANCEL", p.RestockOnCancel)
	if m := strings.ToLower(envStr("ORDER_PRICING_MODE", p.PricingMode)); m == PricingTrust {
		p.PricingMode = PricingTrust
	}
	return p
}
