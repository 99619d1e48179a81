package cmd

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/gestor"
	"github.com/google/subcommands"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "display the latest price of securities" }
func (*quoteCmd) Usage() string {
	return `gst quote [<security>...]

  Displays the latest market price of the given securities, or of all the
  securities held when none is given.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(func(a *app) error {
		var securities []string
		for _, arg := range f.Args() {
			securities = append(securities, gestor.NormalizeSecurity(arg))
		}
		if len(securities) == 0 {
			l, err := a.store.Load(ctx)
			if err != nil {
				return err
			}
			for security, p := range l.Positions() {
				if !p.IsClosed() {
					securities = append(securities, security)
				}
			}
		}
		src, err := a.quoter()
		if err != nil {
			return err
		}
		return printQuotes(ctx, src, a.cfg.Ledger.Currency, securities)
	})
}

func printQuotes(ctx context.Context, src quoter, cur string, securities []string) error {
	var b strings.Builder
	fmt.Fprintln(&b, "| Ticker | Price |")
	fmt.Fprintln(&b, "|:---|---:|")
	slices.Sort(securities)
	for _, security := range slices.Compact(securities) {
		price, err := src.Fetch(ctx, security)
		if err != nil {
			fmt.Fprintf(&b, "| %s | n/a |\n", security)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s |\n", security, gestor.M(price, cur))
	}
	printMarkdown(b.String())
	return nil
}
