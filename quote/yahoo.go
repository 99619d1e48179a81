package quote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/etnz/gestor"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://query2.finance.yahoo.com"

	pricePath = "$.chart.result[0].meta.regularMarketPrice"
)

// Yahoo quotes the last market price of a ticker on the Yahoo Finance chart
// API.
type Yahoo struct {
	source
}

// NewYahoo creates a Yahoo Finance oracle.
func NewYahoo(opts ...Option) *Yahoo {
	return &Yahoo{source: newSource(DefaultBaseURL, opts)}
}

// Quote implements gestor.PriceOracle.
func (y *Yahoo) Quote(ctx context.Context, security string) (decimal.Decimal, bool) {
	price, err := y.Fetch(ctx, security)
	if err != nil {
		y.log.Debug("quote unavailable", zap.String("security", security), zap.Error(err))
		return decimal.Zero, false
	}
	return price, true
}

// Fetch returns the regular market price of security rounded to cents, or
// the reason why there is none.
func (y *Yahoo) Fetch(ctx context.Context, security string) (decimal.Decimal, error) {
	symbol := gestor.NormalizeSecurity(security)
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("empty ticker")
	}
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", y.baseURL, url.PathEscape(symbol))
	return y.price(ctx, symbol, addr, pricePath)
}
