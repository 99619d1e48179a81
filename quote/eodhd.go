package quote

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/etnz/gestor"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultEODHDURL = "https://eodhd.com"

	// EnvEODHDKey is the variable read when no API key is configured.
	EnvEODHDKey = "EODHD_API_KEY"

	eodhdPricePath = "$.close"
)

// EODHD quotes the last price of a ticker on the eodhd.com real-time API.
// Tickers without an exchange suffix are looked up on the US exchanges.
type EODHD struct {
	source
	apiKey string
}

// NewEODHD creates an EODHD oracle authenticated with apiKey.
func NewEODHD(apiKey string, opts ...Option) *EODHD {
	return &EODHD{source: newSource(DefaultEODHDURL, opts), apiKey: apiKey}
}

// Quote implements gestor.PriceOracle.
func (e *EODHD) Quote(ctx context.Context, security string) (decimal.Decimal, bool) {
	price, err := e.Fetch(ctx, security)
	if err != nil {
		e.log.Debug("quote unavailable", zap.String("security", security), zap.Error(err))
		return decimal.Zero, false
	}
	return price, true
}

// Fetch returns the last close of security rounded to cents.
func (e *EODHD) Fetch(ctx context.Context, security string) (decimal.Decimal, error) {
	symbol := gestor.NormalizeSecurity(security)
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("empty ticker")
	}
	if e.apiKey == "" {
		return decimal.Zero, fmt.Errorf("missing EODHD API key, set %s", EnvEODHDKey)
	}
	code := symbol
	if !strings.Contains(code, ".") {
		code += ".US"
	}
	addr := fmt.Sprintf("%s/api/real-time/%s?fmt=json&api_token=%s", e.baseURL, url.PathEscape(code), url.QueryEscape(e.apiKey))
	return e.price(ctx, symbol, addr, eodhdPricePath)
}
