package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/gestor/store"
	"github.com/google/subcommands"
)

// exportCmd copies the ledger into another store, possibly of another format.
type exportCmd struct {
	driver string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "copy the ledger into another file or database" }
func (*exportCmd) Usage() string {
	return `gst export -o <path> [-driver file|sqlite]

  Writes every operation of the ledger to the target. With the file driver the
  format follows the extension: .csv or .jsonl.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.driver, "driver", store.DriverFile, "Target store driver: file or sqlite")
	f.StringVar(&c.output, "o", "", "Target path")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		fmt.Fprintln(os.Stderr, "Error: -o is required")
		return subcommands.ExitUsageError
	}
	return run(func(a *app) error {
		l, err := a.store.Load(ctx)
		if err != nil {
			return err
		}
		target, err := store.Open(c.driver, c.output, a.cfg.Ledger.Currency)
		if err != nil {
			return err
		}
		if closer, ok := target.(io.Closer); ok {
			defer closer.Close()
		}
		if err := target.Save(ctx, l); err != nil {
			return fmt.Errorf("could not export ledger: %w", err)
		}
		fmt.Fprintf(stdout, "%d operations exported to %s\n", l.Len(), c.output)
		return nil
	})
}
