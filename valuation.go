package gestor

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SecurityValuation is the valuation of one security of the ledger.
type SecurityValuation struct {
	Security     string
	BuyQuantity  Quantity // units held, from Buy rows
	BuyCost      Money    // capital committed in Buy rows
	SellQuantity Quantity // units sold, from Sell rows
	SellCost     Money    // cost basis removed by Sell rows
	NetInvested  Money
	// Price is the quoted price, zero when PriceAvailable is false.
	Price          Money
	PriceAvailable bool
	MarketValue    Money // BuyQuantity × Price
	Profit         Money // MarketValue − NetInvested
	// ROI is Profit / NetInvested × 100, 0 unless NetInvested > 0.
	ROI Percent
	// Weight is the share of the portfolio market value, 0 when the
	// portfolio is worth nothing.
	Weight Percent
}

// Snapshot holds point-in-time portfolio metrics. It is computed on demand
// and never persisted.
type Snapshot struct {
	Basis         InvestedBasis
	Securities    []SecurityValuation // sorted by security
	TotalInvested Money
	TotalValue    Money
	NetProfit     Money
	ROI           Percent // NetProfit / TotalInvested × 100, 0 unless TotalInvested > 0
	Commissions   Money   // paid on all rows, informative only
}

// Security returns the valuation of one security.
func (s *Snapshot) Security(security string) (SecurityValuation, bool) {
	security = NormalizeSecurity(security)
	for _, v := range s.Securities {
		if v.Security == security {
			return v, true
		}
	}
	return SecurityValuation{}, false
}

// Degraded lists the held securities that were valued at zero because no
// price was available.
func (s *Snapshot) Degraded() []string {
	var out []string
	for _, v := range s.Securities {
		if !v.PriceAvailable && v.BuyQuantity.IsPositive() {
			out = append(out, v.Security)
		}
	}
	return out
}

type valuationOptions struct {
	basis        InvestedBasis
	concurrency  int
	quoteTimeout time.Duration
	currency     string
	log          *zap.Logger
}

// ValuationOption configures Valuate.
type ValuationOption func(*valuationOptions)

// WithInvestedBasis selects how invested capital is derived. Default is NetOfSales.
func WithInvestedBasis(b InvestedBasis) ValuationOption {
	return func(o *valuationOptions) { o.basis = b }
}

// WithConcurrency bounds the number of simultaneous price lookups. Default is 4.
func WithConcurrency(n int) ValuationOption {
	return func(o *valuationOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithQuoteTimeout bounds each price lookup; a lookup that times out counts
// as unavailable. Zero means no timeout.
func WithQuoteTimeout(d time.Duration) ValuationOption {
	return func(o *valuationOptions) { o.quoteTimeout = d }
}

// WithCurrency sets the currency of the quoted prices.
func WithCurrency(cur string) ValuationOption {
	return func(o *valuationOptions) { o.currency = cur }
}

// WithLogger sets the logger used to report degraded quotes.
func WithLogger(log *zap.Logger) ValuationOption {
	return func(o *valuationOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// Valuate computes the portfolio metrics of l using oracle for current prices.
//
// Per security, invested capital is the Buy rows cost minus the Sell rows
// cost basis (or only the Buy rows cost with OpenCost), and the market value
// is the held quantity times the current price. A failed lookup values the
// security at zero and marks it unavailable; it is not an error. Only held
// securities are quoted.
//
// Valuate does not modify l. It fails with ErrCurrencyMismatch when the
// requested currency is not the ledger's, and with the context's error when
// ctx is done before all quotes are in.
func Valuate(ctx context.Context, l Ledger, oracle PriceOracle, opts ...ValuationOption) (*Snapshot, error) {
	o := valuationOptions{concurrency: 4, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.currency != "" && l.currency != "" && o.currency != l.currency {
		return nil, fmt.Errorf("%w: ledger is in %s, valuation asked in %s", ErrCurrencyMismatch, l.currency, o.currency)
	}
	cur := cmp.Or(o.currency, l.currency)

	positions := l.Positions()
	securities := l.Securities()
	prices := make([]decimal.Decimal, len(securities))
	available := make([]bool, len(securities))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, security := range securities {
		if oracle == nil || positions[security].Quantity.IsZero() {
			continue
		}
		g.Go(func() error {
			qctx := ctx
			if o.quoteTimeout > 0 {
				var cancel context.CancelFunc
				qctx, cancel = context.WithTimeout(ctx, o.quoteTimeout)
				defer cancel()
			}
			price, ok := oracle.Quote(qctx, security)
			if ok && !price.IsNegative() {
				prices[i], available[i] = price, true
			}
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &Snapshot{Basis: o.basis}
	for i, security := range securities {
		p := positions[security]
		v := SecurityValuation{
			Security:       security,
			BuyQuantity:    p.Quantity,
			BuyCost:        p.CostBasis,
			SellQuantity:   p.SoldQuantity,
			SellCost:       p.RemovedCost,
			Price:          M(prices[i], cur),
			PriceAvailable: available[i],
		}
		switch o.basis {
		case OpenCost:
			v.NetInvested = v.BuyCost
		default:
			v.NetInvested = v.BuyCost.Sub(v.SellCost)
		}
		v.MarketValue = v.Price.Mul(v.BuyQuantity)
		v.Profit = v.MarketValue.Sub(v.NetInvested)
		v.ROI = ratio(v.Profit, v.NetInvested)
		if !v.PriceAvailable && v.BuyQuantity.IsPositive() {
			o.log.Warn("price unavailable, security valued at zero",
				zap.String("security", security),
				zap.Stringer("quantity", v.BuyQuantity))
		}

		s.Securities = append(s.Securities, v)
		s.TotalInvested = s.TotalInvested.Add(v.NetInvested)
		s.TotalValue = s.TotalValue.Add(v.MarketValue)
	}
	for _, tx := range l.transactions {
		s.Commissions = s.Commissions.Add(tx.Commission)
	}
	for i := range s.Securities {
		s.Securities[i].Weight = ratio(s.Securities[i].MarketValue, s.TotalValue)
	}
	s.NetProfit = s.TotalValue.Sub(s.TotalInvested)
	s.ROI = ratio(s.NetProfit, s.TotalInvested)
	return s, nil
}
