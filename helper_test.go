package gestor

import (
	"context"

	"github.com/etnz/gestor/date"
	"github.com/shopspring/decimal"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to parse a date.
func day(s string) date.Date { return date.MustParse(s) }

// buy is a helper for test to create a Buy row from its total amount.
func buy(on, security string, quantity, amount float64) Transaction {
	return Transaction{Date: day(on), Security: security, Quantity: Q(quantity), Amount: USD(amount), Kind: Buy, Commission: USD(0)}
}

// sell is a helper for test to create a Sell row.
func sell(on, security string, quantity, costBasis float64) Transaction {
	return NewSell(day(on), security, Q(quantity), USD(costBasis), USD(0))
}

// mustLedger builds a ledger or panics.
func mustLedger(txs ...Transaction) Ledger {
	l, err := NewLedger(txs...)
	if err != nil {
		panic(err)
	}
	return l
}

// prices is a test oracle backed by a map; missing securities are unavailable.
type prices map[string]float64

func (p prices) Quote(_ context.Context, security string) (decimal.Decimal, bool) {
	v, ok := p[security]
	return decimal.NewFromFloat(v), ok
}
