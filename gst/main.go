// Command gst records stock buys and sells in a ledger and values the
// portfolio at market prices.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/gestor/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	completion().Complete("gst")

	commander := subcommands.NewCommander(flag.CommandLine, "gst")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line for shell completion, enabled with
// COMP_INSTALL=1 gst.
func completion() *complete.Command {
	date := predict.Nothing
	basis := predict.Set{"net", "open"}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
		},
		Sub: map[string]*complete.Command{
			"buy": {Flags: map[string]complete.Predictor{
				"d": date, "s": predict.Something, "q": predict.Something, "p": predict.Something, "c": predict.Something,
			}},
			"sell": {Flags: map[string]complete.Predictor{
				"d": date, "s": predict.Something, "q": predict.Something, "cost": predict.Something, "c": predict.Something, "all": predict.Nothing,
			}},
			"rm": {Flags: map[string]complete.Predictor{"force": predict.Nothing}},
			"tx": {Flags: map[string]complete.Predictor{
				"s": predict.Something, "k": predict.Set{"Compra", "Venta"}, "from": date, "to": date,
			}},
			"check": {},
			"export": {Flags: map[string]complete.Predictor{
				"driver": predict.Set{"file", "sqlite"}, "o": predict.Files("*"),
			}},
			"holding": {Flags: map[string]complete.Predictor{
				"prices": predict.Something, "basis": basis, "closed": predict.Nothing,
			}},
			"report": {Flags: map[string]complete.Predictor{
				"format": predict.Set{"csv", "md"}, "o": predict.Files("*"), "prices": predict.Something, "basis": basis,
			}},
			"quote":    {Args: predict.Something},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
