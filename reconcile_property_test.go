package gestor

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

// genLedger draws a ledger of buys on a single security.
func genLedger(t *rapid.T) Ledger {
	n := rapid.IntRange(1, 6).Draw(t, "buys")
	var l Ledger
	for i := range n {
		q := rapid.IntRange(1, 1000).Draw(t, "quantity")
		cost := rapid.IntRange(0, 100000).Draw(t, "cost")
		var err error
		l, err = l.Append(Transaction{
			Date:     day("2025-01-01").Add(i),
			Security: "AAPL",
			Quantity: Q(q),
			Amount:   M(cost, "USD"),
			Kind:     Buy,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func TestReconcile_Conservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := genLedger(t)
		before := l.Position("AAPL")
		q := rapid.IntRange(1, int(before.Quantity.Decimal().IntPart())).Draw(t, "sell")
		cost := rapid.IntRange(0, 100000).Draw(t, "cost_basis")

		got, _, err := Reconcile(l, SellRequest{Date: day("2025-06-01"), Security: "AAPL", Quantity: Q(q), CostBasis: USD(float64(cost))})
		if err != nil {
			t.Fatalf("Reconcile() unexpected error: %v", err)
		}
		after := got.Position("AAPL")
		if !after.Quantity.Equal(before.Quantity.Sub(Q(q))) {
			t.Fatalf("remaining quantity = %v, want %v", after.Quantity, before.Quantity.Sub(Q(q)))
		}
		// Capital is conserved: what is still committed plus what was removed
		// equals what was committed before.
		if !after.CostBasis.Add(after.RemovedCost).Equal(before.CostBasis) {
			t.Fatalf("cost %v + removed %v != %v", after.CostBasis, after.RemovedCost, before.CostBasis)
		}
		if after.Lots > 1 {
			t.Fatalf("Lots = %d after a sell, want at most one", after.Lots)
		}
		for _, tx := range got.Transactions(ByKind(Buy)) {
			if !tx.Quantity.IsPositive() {
				t.Fatalf("zero quantity buy row persisted: %v", tx)
			}
		}

		// Selling the rest closes the position.
		if after.Quantity.IsPositive() {
			rest := after.CostBasis
			if rest.IsNegative() {
				rest = USD(0)
			}
			got, _, err = Reconcile(got, SellRequest{Date: day("2025-07-01"), Security: "AAPL", Quantity: after.Quantity, CostBasis: rest})
			if err != nil {
				t.Fatalf("Reconcile() of the remaining units: %v", err)
			}
			if p := got.Position("AAPL"); !p.IsClosed() || p.Lots != 0 {
				t.Fatalf("position not closed: %+v", p)
			}
		}
	})
}

func TestReconcile_OversellLeavesLedgerUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := genLedger(t)
		held := l.Position("AAPL").Quantity
		extra := rapid.IntRange(1, 1000).Draw(t, "extra")

		got, _, err := Reconcile(l, SellRequest{Date: day("2025-06-01"), Security: "AAPL", Quantity: held.Add(Q(extra)), CostBasis: USD(1)})
		if !errors.Is(err, ErrInsufficientHoldings) {
			t.Fatalf("Reconcile() error = %v, want ErrInsufficientHoldings", err)
		}
		if got.Len() != l.Len() {
			t.Fatalf("ledger changed: %d rows, want %d", got.Len(), l.Len())
		}
		for i, tx := range l.Transactions() {
			if !got.At(i).Equal(tx) {
				t.Fatalf("row %d changed: %v, want %v", i, got.At(i), tx)
			}
		}
	})
}
