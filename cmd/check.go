package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "audit the ledger" }
func (*checkCmd) Usage() string {
	return `gst check

  Reports malformed operations and securities whose buys were not collapsed
  after a sell. Exits with a failure status when something is found.
`
}

func (*checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(func(a *app) error {
		l, err := a.store.Load(ctx)
		if err != nil {
			return err
		}
		if err := l.Check(); err != nil {
			return errors.New("ledger check failed:\n" + err.Error())
		}
		fmt.Fprintf(stdout, "%d operations, ledger is consistent\n", l.Len())
		return nil
	})
}
