package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/gestor"
	"github.com/etnz/gestor/date"
	"github.com/etnz/gestor/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	security string
	from     string
	to       string
	kind     string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the operations of the ledger" }
func (*txCmd) Usage() string {
	return `gst tx [-s <security>] [-k <kind>] [-from <date>] [-to <date>]

  Lists the ledger operations with their index, the one 'gst rm' expects.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "s", "", "Only list the operations of this security")
	f.StringVar(&c.kind, "k", "", "Only list the operations of this kind (Compra or Venta)")
	f.StringVar(&c.from, "from", "", "First date of the range, inclusive")
	f.StringVar(&c.to, "to", "", "Last date of the range, inclusive")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := date.ParseRange(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing range: %v\n", err)
		return subcommands.ExitUsageError
	}
	filters := []func(gestor.Transaction) bool{gestor.InRange(r)}
	if c.security != "" {
		filters = append(filters, gestor.BySecurity(c.security))
	}
	if c.kind != "" {
		k, err := gestor.ParseKind(c.kind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		filters = append(filters, gestor.ByKind(k))
	}

	return run(func(a *app) error {
		l, err := a.store.Load(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.TransactionsMarkdown(renderer.NewTransactions(l, filters...)))
		return nil
	})
}
