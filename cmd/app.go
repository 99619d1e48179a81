// Package cmd implements the gst CLI application to manage an investment ledger.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/gestor"
	"github.com/etnz/gestor/config"
	"github.com/etnz/gestor/logger"
	"github.com/etnz/gestor/quote"
	"github.com/etnz/gestor/store"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "operations")
	c.Register(&sellCmd{}, "operations")
	c.Register(&rmCmd{}, "operations")
	c.Register(&txCmd{}, "operations")
	c.Register(&checkCmd{}, "operations")
	c.Register(&exportCmd{}, "operations")

	c.Register(&holdingCmd{}, "reports")
	c.Register(&reportCmd{}, "reports")
	c.Register(&quoteCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the YAML configuration file. Defaults to $"+config.EnvFile)

// stdout receives the command outputs.
var stdout io.Writer = os.Stdout

// app holds what commands share: settings, logger and ledger store.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	store gestor.Store
}

// loadApp reads the configuration and opens the ledger store.
func loadApp() (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("could not build logger: %w", err)
	}
	st, err := store.Open(cfg.Ledger.Driver, cfg.Ledger.Path, cfg.Ledger.Currency)
	if err != nil {
		return nil, err
	}
	log.Debug("ledger store opened",
		zap.String("driver", cfg.Ledger.Driver),
		zap.String("path", cfg.Ledger.Path))
	return &app{cfg: cfg, log: log, store: st}, nil
}

// Close releases the store and flushes the logger.
func (a *app) Close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("could not close ledger store", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// openBook loads the ledger for edition.
func (a *app) openBook(ctx context.Context) (*gestor.Book, error) {
	return gestor.OpenBook(ctx, a.store, a.log)
}

// oracle returns the price oracle. Fixed prices, given as "TICKER=PRICE,..."
// take precedence over the online quotes.
func (a *app) oracle(fixed string) (gestor.PriceOracle, error) {
	if fixed != "" {
		return quote.ParseFixed(fixed)
	}
	return a.quoter()
}

// quoter is an online price source.
type quoter interface {
	gestor.PriceOracle
	Fetch(ctx context.Context, security string) (decimal.Decimal, error)
}

// quoter returns the configured online price source.
func (a *app) quoter() (quoter, error) {
	q := a.cfg.Quote
	opts := []quote.Option{
		quote.WithBaseURL(q.BaseURL),
		quote.WithRateLimit(q.Rate),
		quote.WithLogger(a.log),
	}
	if q.Cache {
		opts = append(opts, quote.WithHTTPClient(quote.NewDailyCache(nil, q.CacheDir, a.log).Client()))
	}
	switch strings.ToLower(q.Provider) {
	case "yahoo", "":
		return quote.NewYahoo(opts...), nil
	case "eodhd":
		key := q.APIKey
		if key == "" {
			key = os.Getenv(quote.EnvEODHDKey)
		}
		return quote.NewEODHD(key, opts...), nil
	default:
		return nil, fmt.Errorf("unknown quote provider %q, want yahoo or eodhd", q.Provider)
	}
}

// valuationOptions returns the valuation settings, basis overrides the
// configured invested basis when not empty.
func (a *app) valuationOptions(basis string) ([]gestor.ValuationOption, error) {
	if basis == "" {
		basis = a.cfg.Valuation.InvestedBasis
	}
	b, err := gestor.ParseInvestedBasis(basis)
	if err != nil {
		return nil, err
	}
	return []gestor.ValuationOption{
		gestor.WithInvestedBasis(b),
		gestor.WithConcurrency(a.cfg.Quote.Concurrency),
		gestor.WithQuoteTimeout(a.cfg.Quote.Timeout),
		gestor.WithCurrency(a.cfg.Ledger.Currency),
		gestor.WithLogger(a.log),
	}, nil
}

// run loads the app and runs f with it, mapping errors to the exit status.
func run(f func(a *app) error) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	if err := f(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
