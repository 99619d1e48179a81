package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/gestor"
	"github.com/shopspring/decimal"
)

// Fixed is an oracle answering from a fixed price list, for offline
// valuations. Securities not in the list have no price.
type Fixed map[string]decimal.Decimal

// Quote implements gestor.PriceOracle.
func (f Fixed) Quote(_ context.Context, security string) (decimal.Decimal, bool) {
	p, ok := f[gestor.NormalizeSecurity(security)]
	return p, ok
}

// ParseFixed parses a list of "TICKER=PRICE" pairs separated by commas.
func ParseFixed(s string) (Fixed, error) {
	f := make(Fixed)
	for pair := range strings.SplitSeq(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		ticker, price, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid price %q, want TICKER=PRICE", pair)
		}
		p, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", ticker, err)
		}
		f[gestor.NormalizeSecurity(ticker)] = p
	}
	return f, nil
}
