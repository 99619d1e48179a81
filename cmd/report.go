package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/gestor/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	output string
	format string
	prices string
	basis  string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "generate the investment report" }
func (*reportCmd) Usage() string {
	return `gst report [-format csv|md] [-o <file>] [-prices <TICKER=PRICE,...>] [-basis net|open]

  Lists every operation with the current price, value and gain of the buys,
  followed by a TOTALES row with the invested capital, the current value and
  the net profit.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Write the report to this file instead of the standard output")
	f.StringVar(&c.format, "format", "csv", "Report format: csv or md")
	f.StringVar(&c.prices, "prices", "", "Use these prices instead of the online quotes")
	f.StringVar(&c.basis, "basis", "", "Invested capital basis: net or open")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "csv" && c.format != "md" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q, want csv or md\n", c.format)
		return subcommands.ExitUsageError
	}
	return run(func(a *app) error {
		s, l, err := valuate(ctx, a, c.prices, c.basis)
		if err != nil {
			return err
		}
		r := renderer.NewReport(l, s)

		if c.output == "" {
			if c.format == "md" {
				printMarkdown(renderer.ReportMarkdown(r))
				return nil
			}
			return renderer.WriteCSV(stdout, r)
		}

		file, err := os.Create(c.output)
		if err != nil {
			return fmt.Errorf("could not create report file: %w", err)
		}
		err = writeReport(file, c.format, r)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("could not write report file: %w", err)
		}
		fmt.Fprintf(stdout, "Report written to %s\n", c.output)
		return nil
	})
}

// writeReport writes r to w in format.
func writeReport(w io.Writer, format string, r *renderer.Report) error {
	if format == "md" {
		_, err := io.WriteString(w, renderer.ReportMarkdown(r))
		return err
	}
	return renderer.WriteCSV(w, r)
}
