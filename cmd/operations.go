package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/gestor"
	"github.com/etnz/gestor/date"
	"github.com/etnz/gestor/renderer"
	"github.com/google/subcommands"
)

// --- Buy Command ---

type buyCmd struct {
	date       string
	security   string
	quantity   string
	price      string
	commission string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase units to open or add to a position" }
func (*buyCmd) Usage() string {
	return `gst buy -s <security> -q <quantity> -p <price> [-d <date>] [-c <commission>]

  Records a purchase. The operation amount is the unit price times the
  quantity: the capital committed to the position.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Operation date (YYYY-MM-DD)")
	f.StringVar(&c.security, "s", "", "Security ticker")
	f.StringVar(&c.quantity, "q", "", "Number of units")
	f.StringVar(&c.price, "p", "", "Price per unit")
	f.StringVar(&c.commission, "c", "0", "Commission paid")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.quantity == "" || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(func(a *app) error {
		cur := a.cfg.Ledger.Currency
		day, err := date.Parse(c.date)
		if err != nil {
			return err
		}
		q, err := gestor.ParseQuantity(c.quantity)
		if err != nil {
			return err
		}
		price, err := gestor.ParseMoney(c.price, cur)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		commission, err := gestor.ParseMoney(c.commission, cur)
		if err != nil {
			return fmt.Errorf("commission: %w", err)
		}

		book, err := a.openBook(ctx)
		if err != nil {
			return err
		}
		tx := gestor.NewBuy(day, c.security, q, price, commission)
		if err := book.Buy(ctx, tx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderer.Transaction(tx))
		fmt.Fprintln(stdout, renderer.Position(book.Ledger().Position(tx.Security)))
		return nil
	})
}

// --- Sell Command ---

type sellCmd struct {
	date       string
	security   string
	quantity   string
	cost       string
	commission string
	all        bool
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell units to trim or close a position" }
func (*sellCmd) Usage() string {
	return `gst sell -s <security> (-q <quantity> | -all) [-cost <cost basis>] [-d <date>] [-c <commission>]

  Records a sale and reconciles the position: all the buy operations of the
  security are replaced by a single one holding the remaining units and the
  remaining cost.

  -cost is the cost basis removed from the position by the sale, it defaults
  to the average cost of the sold units.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Operation date (YYYY-MM-DD)")
	f.StringVar(&c.security, "s", "", "Security ticker")
	f.StringVar(&c.quantity, "q", "", "Number of units")
	f.StringVar(&c.cost, "cost", "", "Cost basis removed, defaults to the average cost of the sold units")
	f.StringVar(&c.commission, "c", "0", "Commission paid")
	f.BoolVar(&c.all, "all", false, "Sell all the units held")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || (c.quantity == "") == !c.all {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(func(a *app) error {
		cur := a.cfg.Ledger.Currency
		day, err := date.Parse(c.date)
		if err != nil {
			return err
		}
		commission, err := gestor.ParseMoney(c.commission, cur)
		if err != nil {
			return fmt.Errorf("commission: %w", err)
		}
		book, err := a.openBook(ctx)
		if err != nil {
			return err
		}

		pos := book.Ledger().Position(c.security)
		q := pos.Quantity
		if c.all && q.IsZero() {
			return &gestor.InsufficientHoldingsError{Security: pos.Security}
		}
		if !c.all {
			if q, err = gestor.ParseQuantity(c.quantity); err != nil {
				return err
			}
		}
		cost := pos.AverageCost().Mul(q)
		if c.all {
			cost = pos.CostBasis
		}
		if cost.IsNegative() {
			cost = gestor.M(0, cur)
		}
		if c.cost != "" {
			if cost, err = gestor.ParseMoney(c.cost, cur); err != nil {
				return fmt.Errorf("cost basis: %w", err)
			}
		}

		sell, after, err := book.Sell(ctx, gestor.SellRequest{
			Date:       day,
			Security:   c.security,
			Quantity:   q,
			CostBasis:  cost,
			Commission: commission,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderer.Transaction(sell))
		fmt.Fprintln(stdout, renderer.Position(after))
		return nil
	})
}

// --- Remove Command ---

type rmCmd struct {
	force bool
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "remove an operation from the ledger, without reconciliation" }
func (*rmCmd) Usage() string {
	return `gst rm -force <index>

  Removes the operation at <index>, as listed by 'gst tx'.

  This is an administrative correction: the position is not reconciled and
  no sale is recorded. Use 'gst check' afterwards.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Confirm the removal")
}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	index, err := strconv.Atoi(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid index %q: %v\n", f.Arg(0), err)
		return subcommands.ExitUsageError
	}
	if !c.force {
		fmt.Fprintln(os.Stderr, "Error: removing an operation bypasses the position reconciliation, use -force to confirm.")
		return subcommands.ExitUsageError
	}
	return run(func(a *app) error {
		book, err := a.openBook(ctx)
		if err != nil {
			return err
		}
		removed, err := book.Remove(ctx, index)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Removed #%d: %s\n", index, renderer.Transaction(removed))
		if err := book.Ledger().Check(); err != nil {
			fmt.Fprintf(stdout, "Warning, the ledger needs attention:\n%v\n", err)
		}
		return nil
	})
}
