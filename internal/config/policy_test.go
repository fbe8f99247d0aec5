package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadOrderPolicyDefaults(t *testing.T) {
	for _, k := range []string{"ORDER_TAX_RATE", "ORDER_SERVICE_CHARGE_RATE", "ORDER_PRICE_TOLERANCE", "ORDER_PRICING_MODE", "ORDER_RESTOCK_ON_CANCEL"} {
		t.Setenv(k, "")
	}
	p := LoadOrderPolicy()
	if !p.TaxRate.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("tax rate = %s", p.TaxRate)
	}
	if !p.ServiceChargeRate.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("service rate = %s", p.ServiceChargeRate)
	}
	if p.PricingMode != PricingVerify || p.RestockOnCancel {
		t.Errorf("unexpected policy %+v", p)
	}
}

func TestLoadOrderPolicyOverrides(t *testing.T) {
	t.Setenv("ORDER_TAX_RATE", "0.18")
	t.Setenv("ORDER_PRICING_MODE", "TRUST")
	t.Setenv("ORDER_RESTOCK_ON_CANCEL", "yes")
	t.Setenv("ORDER_PRICE_TOLERANCE", "not-a-number")
	p := LoadOrderPolicy()
	if !p.TaxRate.Equal(decimal.RequireFromString("0.18")) {
		t.Errorf("tax rate = %s", p.TaxRate)
	}
	if p.PricingMode != PricingTrust || !p.RestockOnCancel {
		t.Errorf("overrides not applied: %+v", p)
	}
	if !p.PriceTolerance.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("malformed tolerance should keep default, got %s", p.PriceTolerance)
	}
}

func TestLoadEventsConfigUnknownDriver(t *testing.T) {
	t.Setenv("EVENTS_DRIVER", "kafka")
	if c := LoadEventsConfig(); c.Driver != EventsNone {
		t.Errorf("driver = %q, want none", c.Driver)
	}
}

func TestLoadRateLimitConfigClampsTTL(t *testing.T) {
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	c := LoadRateLimitConfig()
	if c.TTL != 5*time.Minute {
		t.Errorf("ttl = %s, want 5m", c.TTL)
	}
	if c.Capacity != 1 {
		t.Errorf("capacity = %d, want 1", c.Capacity)
	}
}

func TestCacheConfigCacheable(t *testing.T) {
	c := CacheConfig{Paths: []string{"/v1/menu/categories"}}
	if !c.Cacheable("/v1/menu/categories") {
		t.Error("categories should be cacheable")
	}
	if c.Cacheable("/v1/orders") {
		t.Error("orders must not be cacheable")
	}
}
