package quote

import (
	"context"
	"sync"
	"time"

	"github.com/etnz/gestor"
	"github.com/shopspring/decimal"
)

type cachedPrice struct {
	price decimal.Decimal
	at    time.Time
}

// Cached remembers the successful quotes of an oracle for a while. Failed
// quotes are not remembered.
type Cached struct {
	oracle gestor.PriceOracle
	ttl    time.Duration
	now    func() time.Time

	mu     sync.RWMutex
	prices map[string]cachedPrice
}

// NewCached wraps oracle; quotes are reused for ttl.
func NewCached(oracle gestor.PriceOracle, ttl time.Duration) *Cached {
	return &Cached{
		oracle: oracle,
		ttl:    ttl,
		now:    time.Now,
		prices: make(map[string]cachedPrice),
	}
}

// Quote implements gestor.PriceOracle.
func (c *Cached) Quote(ctx context.Context, security string) (decimal.Decimal, bool) {
	key := gestor.NormalizeSecurity(security)
	c.mu.RLock()
	p, ok := c.prices[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(p.at) < c.ttl {
		return p.price, true
	}

	price, ok := c.oracle.Quote(ctx, key)
	if !ok {
		return decimal.Zero, false
	}
	c.mu.Lock()
	c.prices[key] = cachedPrice{price: price, at: c.now()}
	c.mu.Unlock()
	return price, true
}

// Snapshot returns the remembered prices, expired or not.
func (c *Cached) Snapshot() map[string]decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(c.prices))
	for k, v := range c.prices {
		out[k] = v.price
	}
	return out
}
