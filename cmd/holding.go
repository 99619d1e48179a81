package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/gestor"
	"github.com/etnz/gestor/renderer"
	"github.com/google/subcommands"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	prices string
	basis  string
	closed bool
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the current valuation of the portfolio" }
func (*holdingCmd) Usage() string {
	return `gst holding [-prices <TICKER=PRICE,...>] [-basis net|open] [-closed]

  Displays the invested capital, market value and profit of each security
  held, using the latest quotes. Securities without a quote are valued at
  zero and marked.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.prices, "prices", "", "Use these prices instead of the online quotes")
	f.StringVar(&c.basis, "basis", "", "Invested capital basis: net (buys minus sold cost) or open (buys only)")
	f.BoolVar(&c.closed, "closed", false, "Also list the closed positions")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(func(a *app) error {
		s, _, err := valuate(ctx, a, c.prices, c.basis)
		if err != nil {
			return err
		}
		printMarkdown(renderer.SnapshotMarkdown(renderer.NewHolding(s, c.closed)))
		return nil
	})
}

// valuate loads the ledger and computes its snapshot.
func valuate(ctx context.Context, a *app, prices, basis string) (*gestor.Snapshot, gestor.Ledger, error) {
	opts, err := a.valuationOptions(basis)
	if err != nil {
		return nil, gestor.Ledger{}, err
	}
	oracle, err := a.oracle(prices)
	if err != nil {
		return nil, gestor.Ledger{}, err
	}
	l, err := a.store.Load(ctx)
	if err != nil {
		return nil, gestor.Ledger{}, err
	}
	s, err := gestor.Valuate(ctx, l, oracle, opts...)
	if err != nil {
		return nil, gestor.Ledger{}, err
	}
	if degraded := s.Degraded(); len(degraded) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: no current price for %v, valued at zero\n", degraded)
	}
	return s, l, nil
}
