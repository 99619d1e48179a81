package gestor

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceOracle returns the current market price of a security.
//
// ok is false when no price could be obtained; callers value the security at
// zero in that case.
type PriceOracle interface {
	Quote(ctx context.Context, security string) (price decimal.Decimal, ok bool)
}

// OracleFunc adapts a function to the PriceOracle interface.
type OracleFunc func(ctx context.Context, security string) (decimal.Decimal, bool)

func (f OracleFunc) Quote(ctx context.Context, security string) (decimal.Decimal, bool) {
	return f(ctx, security)
}
