package gestor

import (
	"fmt"

	"github.com/etnz/gestor/date"
)

// SellRequest asks to sell Quantity units of Security, removing CostBasis from
// the position's committed capital.
type SellRequest struct {
	Date       date.Date
	Security   string
	Quantity   Quantity
	CostBasis  Money
	Commission Money
}

// Validate checks the request fields.
func (r SellRequest) Validate() error {
	return NewSell(r.Date, r.Security, r.Quantity, r.CostBasis, r.Commission).Validate()
}

// Reconcile executes a sell against the weighted-average position of one
// security and returns the resulting ledger and the recorded Sell row.
//
// All Buy rows of the security are collapsed: they are removed and, if units
// remain, replaced by one synthetic Buy row dated on the sell, holding the
// remaining quantity and the remaining cost, that is the previous committed
// cost minus the request's cost basis. The remaining cost is not clamped and
// can be negative. The Sell row is appended last.
//
// On error the returned ledger is l, unchanged.
func Reconcile(l Ledger, req SellRequest) (Ledger, Transaction, error) {
	sell, err := l.conform(NewSell(req.Date, req.Security, req.Quantity, req.CostBasis, req.Commission))
	if err != nil {
		return l, Transaction{}, fmt.Errorf("invalid sell of %s: %w", sell.Security, err)
	}

	var available Quantity
	var cost Money
	var buys int
	for _, tx := range l.Transactions(BySecurity(sell.Security), ByKind(Buy)) {
		available = available.Add(tx.Quantity)
		cost = cost.Add(tx.Amount)
		buys++
	}
	if buys == 0 || available.LessThan(sell.Quantity) {
		return l, Transaction{}, &InsufficientHoldingsError{
			Security:  sell.Security,
			Requested: sell.Quantity,
			Available: available,
		}
	}

	remaining := available.Sub(sell.Quantity)
	var rows []Transaction
	if remaining.IsPositive() {
		rows = append(rows, Transaction{
			Date:       sell.Date,
			Security:   sell.Security,
			Quantity:   remaining,
			Amount:     cost.Sub(sell.Amount),
			Kind:       Buy,
			Commission: Money{cur: sell.Amount.cur},
		})
	}
	rows = append(rows, sell)
	next := l.ReplaceForSecurity(sell.Security, rows...)
	next.currency = sell.Amount.cur
	return next, sell, nil
}
