package gestor

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/etnz/gestor/date"
)

// Ledger represents the ordered list of buy and sell operations.
//
// A Ledger is a value: every mutating method returns a new Ledger and leaves
// the receiver untouched, so a rejected operation can never leave a partial
// change behind. Insertion order is preserved; valuation aggregates by
// security and does not depend on it.
//
// All the amounts of a ledger share one currency. It is either fixed with
// NewLedgerIn or taken from the first row that carries one.
type Ledger struct {
	transactions []Transaction
	currency     string
}

// NewLedger creates a ledger holding txs, in that order.
func NewLedger(txs ...Transaction) (Ledger, error) {
	return Ledger{}.Append(txs...)
}

// NewLedgerIn creates a ledger in currency holding txs. Rows in another
// currency are malformed.
func NewLedgerIn(currency string, txs ...Transaction) (Ledger, error) {
	return Ledger{currency: currency}.Append(txs...)
}

// Currency returns the currency of the ledger amounts, empty until known.
func (l Ledger) Currency() string { return l.currency }

// Len returns the number of rows.
func (l Ledger) Len() int { return len(l.transactions) }

// At returns the row at index i.
func (l Ledger) At(i int) Transaction { return l.transactions[i] }

// All returns a copy of all the rows, in their original order.
func (l Ledger) All() []Transaction { return slices.Clone(l.transactions) }

// Append returns a ledger with txs added at the end.
//
// Rows are checked for field presence, ranges and currency, and their
// security is normalized. A malformed row makes the whole call fail with
// ErrMalformedRecord.
func (l Ledger) Append(txs ...Transaction) (Ledger, error) {
	out := Ledger{transactions: slices.Clone(l.transactions), currency: l.currency}
	for _, tx := range txs {
		if err := out.push(tx); err != nil {
			return l, fmt.Errorf("cannot append %v: %w", tx, err)
		}
	}
	return out, nil
}

// push admits tx at the end of l, in place.
func (l *Ledger) push(tx Transaction) error {
	tx, err := l.conform(tx)
	if err != nil {
		return err
	}
	if l.currency == "" {
		l.currency = tx.Amount.cur
	}
	l.transactions = append(l.transactions, tx)
	return nil
}

// conform validates tx and returns it with a normalized security and the
// ledger currency on its amounts.
func (l Ledger) conform(tx Transaction) (Transaction, error) {
	tx.Security = NormalizeSecurity(tx.Security)
	if err := tx.Validate(); err != nil {
		return tx, err
	}
	cur := l.currency
	if cur == "" {
		cur = cmp.Or(tx.Amount.cur, tx.Commission.cur)
	}
	if tx.Amount.cur != "" && tx.Amount.cur != cur {
		return tx, malformed("amount", "currency %s does not match the ledger currency %s", tx.Amount.cur, cur)
	}
	if tx.Commission.cur != "" && tx.Commission.cur != cur {
		return tx, malformed("commission", "currency %s does not match the ledger currency %s", tx.Commission.cur, cur)
	}
	tx.Amount.cur, tx.Commission.cur = cur, cur
	return tx, nil
}

// ReplaceForSecurity returns a ledger where every Buy row of security has
// been removed and rows appended at the end.
//
// It is the write primitive of the reconciliation; rows are trusted.
func (l Ledger) ReplaceForSecurity(security string, rows ...Transaction) Ledger {
	security = NormalizeSecurity(security)
	out := make([]Transaction, 0, len(l.transactions)+len(rows))
	for _, tx := range l.transactions {
		if tx.Kind == Buy && tx.Security == security {
			continue
		}
		out = append(out, tx)
	}
	out = append(out, rows...)
	return Ledger{transactions: out, currency: l.currency}
}

// UnsafeRemove returns a ledger without the row at index i, and the removed row.
//
// This is an administrative correction: it bypasses every position invariant
// and must not be used to record a sale.
func (l Ledger) UnsafeRemove(i int) (Ledger, Transaction, error) {
	if i < 0 || i >= len(l.transactions) {
		return l, Transaction{}, fmt.Errorf("no operation #%d, ledger has %d rows", i, len(l.transactions))
	}
	removed := l.transactions[i]
	return Ledger{transactions: slices.Delete(slices.Clone(l.transactions), i, i+1), currency: l.currency}, removed, nil
}

// Transactions returns an iterator that yields each transaction accepted by
// all the filters, with its index, in its original order.
func (l Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			accept := true
			for _, filter := range filters {
				if !filter(tx) {
					accept = false
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// AcceptAll is a filter that accepts every transaction.
func AcceptAll(Transaction) bool { return true }

// BySecurity returns a filter accepting the rows of one security.
func BySecurity(security string) func(Transaction) bool {
	security = NormalizeSecurity(security)
	return func(tx Transaction) bool { return tx.Security == security }
}

// ByKind returns a filter accepting the rows of one kind.
func ByKind(k Kind) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Kind == k }
}

// InRange returns a filter accepting the rows dated within r.
func InRange(r date.Range) func(Transaction) bool {
	return func(tx Transaction) bool { return r.Contains(tx.Date) }
}

// Securities returns the sorted list of securities found in the ledger.
func (l Ledger) Securities() []string {
	var out []string
	for _, tx := range l.transactions {
		out = append(out, tx.Security)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Position folds the rows of security into its current position.
func (l Ledger) Position(security string) Position {
	p := Position{Security: NormalizeSecurity(security)}
	for _, tx := range l.Transactions(BySecurity(security)) {
		p = p.apply(tx)
	}
	return p
}

// Positions folds every security of the ledger, indexed by security.
func (l Ledger) Positions() map[string]Position {
	positions := make(map[string]Position)
	for _, tx := range l.transactions {
		p, ok := positions[tx.Security]
		if !ok {
			p.Security = tx.Security
		}
		positions[tx.Security] = p.apply(tx)
	}
	return positions
}

// Check audits the ledger and returns all the findings joined, or nil.
//
// It reports malformed rows, and securities holding several Buy rows before
// their last Sell row. A sell collapses the earlier buys into one lot, so
// this only happens when rows were edited by hand or removed with
// UnsafeRemove. Buys appended after the last sell are new lots.
func (l Ledger) Check() error {
	var errs error
	lastSell := make(map[string]int)
	for i, tx := range l.transactions {
		if err := tx.Validate(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("operation #%d: %w", i, err))
		}
		if tx.Kind == Sell {
			lastSell[tx.Security] = i
		}
	}
	for _, security := range l.Securities() {
		last, sold := lastSell[security]
		if !sold {
			continue
		}
		lots := 0
		for _, tx := range l.transactions[:last] {
			if tx.Kind == Buy && tx.Security == security {
				lots++
			}
		}
		if lots > 1 {
			errs = errors.Join(errs, fmt.Errorf("%s: %d buy rows before the last sell, want a single weighted-average lot", security, lots))
		}
	}
	return errs
}
