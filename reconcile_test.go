package gestor

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sellReq(on, security string, quantity, costBasis float64) SellRequest {
	return SellRequest{Date: day(on), Security: security, Quantity: Q(quantity), CostBasis: USD(costBasis), Commission: USD(0)}
}

// rows returns the ledger rows as strings for readable diffs.
func rows(l Ledger) []string {
	var out []string
	for _, tx := range l.Transactions() {
		out = append(out, tx.String())
	}
	return out
}

func TestReconcile_PartialThenFullSell(t *testing.T) {
	l := mustLedger(buy("2025-01-10", "AAPL", 10, 1000))

	l, _, err := Reconcile(l, sellReq("2025-02-01", "AAPL", 4, 400))
	if err != nil {
		t.Fatalf("Reconcile() partial sell unexpected error: %v", err)
	}
	want := []Transaction{
		buy("2025-02-01", "AAPL", 6, 600),
		sell("2025-02-01", "AAPL", 4, 400),
	}
	if !slices.EqualFunc(l.All(), want, Transaction.Equal) {
		t.Fatalf("Reconcile() partial sell mismatch (-want +got):\n%s", cmp.Diff(rows(mustLedger(want...)), rows(l)))
	}

	l, _, err = Reconcile(l, sellReq("2025-03-01", "AAPL", 6, 600))
	if err != nil {
		t.Fatalf("Reconcile() full sell unexpected error: %v", err)
	}
	want = []Transaction{
		sell("2025-02-01", "AAPL", 4, 400),
		sell("2025-03-01", "AAPL", 6, 600),
	}
	if !slices.EqualFunc(l.All(), want, Transaction.Equal) {
		t.Fatalf("Reconcile() full sell mismatch (-want +got):\n%s", cmp.Diff(rows(mustLedger(want...)), rows(l)))
	}
	if p := l.Position("AAPL"); !p.IsClosed() || p.Lots != 0 {
		t.Errorf("Position() after full sell = %+v, want closed without lots", p)
	}
}

func TestReconcile_CollapsesLots(t *testing.T) {
	l := mustLedger(
		buy("2025-01-10", "AAPL", 10, 1000),
		buy("2025-01-12", "GOOG", 1, 2800),
		buy("2025-01-15", "AAPL", 10, 1400),
	)
	got, s, err := Reconcile(l, sellReq("2025-02-01", "aapl", 5, 600))
	if err != nil {
		t.Fatalf("Reconcile() unexpected error: %v", err)
	}
	if s.Security != "AAPL" || s.Kind != Sell {
		t.Errorf("Reconcile() returned sell %v", s)
	}
	want := []Transaction{
		buy("2025-01-12", "GOOG", 1, 2800),
		buy("2025-02-01", "AAPL", 15, 1800),
		sell("2025-02-01", "AAPL", 5, 600),
	}
	if !slices.EqualFunc(got.All(), want, Transaction.Equal) {
		t.Errorf("Reconcile() mismatch (-want +got):\n%s", cmp.Diff(rows(mustLedger(want...)), rows(got)))
	}
	if err := got.Check(); err != nil {
		t.Errorf("Check() after reconcile = %v", err)
	}
}

func TestReconcile_Insufficient(t *testing.T) {
	testCases := []struct {
		name      string
		ledger    Ledger
		req       SellRequest
		available Quantity
	}{
		{
			name:      "oversell",
			ledger:    mustLedger(buy("2025-01-10", "AAPL", 5, 500)),
			req:       sellReq("2025-02-01", "AAPL", 6, 600),
			available: Q(5),
		},
		{
			name:      "no buys",
			ledger:    mustLedger(buy("2025-01-10", "GOOG", 5, 500)),
			req:       sellReq("2025-02-01", "AAPL", 1, 100),
			available: Q(0),
		},
		{
			name: "already closed",
			ledger: mustLedger(
				sell("2025-02-01", "AAPL", 4, 400),
				sell("2025-03-01", "AAPL", 6, 600),
			),
			req:       sellReq("2025-04-01", "AAPL", 1, 100),
			available: Q(0),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := Reconcile(tc.ledger, tc.req)
			if !errors.Is(err, ErrInsufficientHoldings) {
				t.Fatalf("Reconcile() error = %v, want ErrInsufficientHoldings", err)
			}
			var ihe *InsufficientHoldingsError
			if !errors.As(err, &ihe) {
				t.Fatalf("Reconcile() error = %T, want *InsufficientHoldingsError", err)
			}
			if !ihe.Available.Equal(tc.available) {
				t.Errorf("Available = %v, want %v", ihe.Available, tc.available)
			}
			if !slices.EqualFunc(got.All(), tc.ledger.All(), Transaction.Equal) {
				t.Errorf("Reconcile() changed the ledger:\n%s", cmp.Diff(rows(tc.ledger), rows(got)))
			}
		})
	}
}

func TestReconcile_Malformed(t *testing.T) {
	l := mustLedger(buy("2025-01-10", "AAPL", 5, 500))
	testCases := []struct {
		name string
		req  SellRequest
	}{
		{"zero quantity", sellReq("2025-02-01", "AAPL", 0, 0)},
		{"negative cost basis", sellReq("2025-02-01", "AAPL", 1, -100)},
		{"missing date", SellRequest{Security: "AAPL", Quantity: Q(1), CostBasis: USD(100)}},
		{"other currency", SellRequest{Date: day("2025-02-01"), Security: "AAPL", Quantity: Q(1), CostBasis: M(100, "EUR")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := Reconcile(l, tc.req)
			if !errors.Is(err, ErrMalformedRecord) {
				t.Fatalf("Reconcile() error = %v, want ErrMalformedRecord", err)
			}
			if got.Len() != 1 || !got.At(0).Equal(l.At(0)) {
				t.Errorf("Reconcile() changed the ledger: %v", rows(got))
			}
		})
	}
}

func TestReconcile_NegativeRemainingCost(t *testing.T) {
	// Removing more cost than committed leaves a negative synthetic lot.
	l := mustLedger(buy("2025-01-10", "AAPL", 10, 1000))
	got, _, err := Reconcile(l, sellReq("2025-02-01", "AAPL", 5, 1200))
	if err != nil {
		t.Fatalf("Reconcile() unexpected error: %v", err)
	}
	p := got.Position("AAPL")
	if !p.CostBasis.Equal(USD(-200)) || !p.Quantity.Equal(Q(5)) {
		t.Errorf("Position() = %v for %v, want 5 for -200", p.Quantity, p.CostBasis)
	}
	if err := got.Check(); err != nil {
		t.Errorf("Check() = %v, want a negative synthetic lot to be valid", err)
	}
}
