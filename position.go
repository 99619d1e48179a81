package gestor

// Position is the aggregate state of one security, folded from its ledger rows.
//
// Outstanding Buy rows make the held quantity and the committed cost basis;
// Sell rows only accumulate what was historically removed. There is no lot
// identity: once a sell happened, the Buy rows collapse into a single
// weighted-average lot.
type Position struct {
	Security string
	// Quantity is the number of units held, summed over Buy rows.
	Quantity Quantity
	// CostBasis is the capital committed to the held units, summed over Buy rows.
	CostBasis Money
	// Lots counts the Buy rows.
	Lots int
	// SoldQuantity is the number of units sold, summed over Sell rows.
	SoldQuantity Quantity
	// RemovedCost is the cost basis declared on Sell rows.
	RemovedCost Money
	// Sells counts the Sell rows.
	Sells int
}

// apply folds one row of the position's security into the position.
func (p Position) apply(tx Transaction) Position {
	switch tx.Kind {
	case Buy:
		p.Quantity = p.Quantity.Add(tx.Quantity)
		p.CostBasis = p.CostBasis.Add(tx.Amount)
		p.Lots++
	case Sell:
		p.SoldQuantity = p.SoldQuantity.Add(tx.Quantity)
		p.RemovedCost = p.RemovedCost.Add(tx.Amount)
		p.Sells++
	}
	return p
}

// AverageCost is the weighted-average cost per held unit.
func (p Position) AverageCost() Money {
	if p.Quantity.IsZero() {
		return Money{cur: p.CostBasis.cur}
	}
	return p.CostBasis.Div(p.Quantity)
}

// IsClosed reports whether no unit is held anymore.
func (p Position) IsClosed() bool { return p.Quantity.IsZero() }

// TotalBought is the number of units ever bought: held plus sold.
func (p Position) TotalBought() Quantity { return p.Quantity.Add(p.SoldQuantity) }
