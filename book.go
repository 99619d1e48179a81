package gestor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Store persists a whole ledger. Save must replace the stored ledger
// atomically: readers either see the previous ledger or the new one.
type Store interface {
	Load(ctx context.Context) (Ledger, error)
	Save(ctx context.Context, l Ledger) error
}

// Book is an editing session over a stored ledger.
//
// Every mutation runs read, compute, persist and swap under a single lock, so
// two sells of the same security can never interleave. The in-memory ledger
// only changes once the store accepted the new one.
type Book struct {
	mu     sync.Mutex
	ledger Ledger
	store  Store
	log    *zap.Logger
}

// OpenBook loads the ledger from store.
func OpenBook(ctx context.Context, store Store, log *zap.Logger) (*Book, error) {
	if log == nil {
		log = zap.NewNop()
	}
	l, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load ledger: %w", err)
	}
	log.Debug("ledger loaded", zap.Int("rows", l.Len()))
	return &Book{ledger: l, store: store, log: log}, nil
}

// Ledger returns the current ledger. The returned value is a snapshot, later
// mutations of the book do not affect it.
func (b *Book) Ledger() Ledger {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ledger
}

// commit persists next and makes it the current ledger. Must be called with
// b.mu held.
func (b *Book) commit(ctx context.Context, next Ledger) error {
	if err := b.store.Save(ctx, next); err != nil {
		return fmt.Errorf("could not save ledger: %w", err)
	}
	b.ledger = next
	return nil
}

// Buy records a purchase. Buy rows entered by a user must carry a
// non-negative amount.
func (b *Book) Buy(ctx context.Context, tx Transaction) error {
	if tx.Kind != Buy {
		return malformed("kind", "want %s, got %s", Buy, tx.Kind)
	}
	if tx.Amount.IsNegative() {
		return malformed("amount", "buy amount must not be negative, got %s", tx.Amount.value)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	next, err := b.ledger.Append(tx)
	if err != nil {
		return err
	}
	if err := b.commit(ctx, next); err != nil {
		return err
	}
	b.log.Info("buy recorded",
		zap.String("security", tx.Security),
		zap.Stringer("quantity", tx.Quantity),
		zap.Stringer("amount", tx.Amount))
	return nil
}

// Sell reconciles a sale against the position and records it. It returns the
// recorded Sell row and the position after the sale.
func (b *Book) Sell(ctx context.Context, req SellRequest) (Transaction, Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, sell, err := Reconcile(b.ledger, req)
	if err != nil {
		return Transaction{}, Position{}, err
	}
	if err := b.commit(ctx, next); err != nil {
		return Transaction{}, Position{}, err
	}
	pos := next.Position(sell.Security)
	b.log.Info("sell reconciled",
		zap.String("security", sell.Security),
		zap.Stringer("quantity", sell.Quantity),
		zap.Stringer("cost_basis", sell.Amount),
		zap.Stringer("remaining", pos.Quantity),
		zap.Stringer("remaining_cost", pos.CostBasis))
	return sell, pos, nil
}

// Remove deletes the row at index i and returns it.
//
// This is an administrative correction that bypasses every position
// invariant; it never records a sale.
func (b *Book) Remove(ctx context.Context, i int) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, removed, err := b.ledger.UnsafeRemove(i)
	if err != nil {
		return Transaction{}, err
	}
	if err := b.commit(ctx, next); err != nil {
		return Transaction{}, err
	}
	b.log.Warn("operation removed without reconciliation",
		zap.Int("index", i),
		zap.Stringer("operation", removed))
	return removed, nil
}

// Valuate computes the portfolio metrics of the current ledger.
func (b *Book) Valuate(ctx context.Context, oracle PriceOracle, opts ...ValuationOption) (*Snapshot, error) {
	opts = append([]ValuationOption{WithLogger(b.log)}, opts...)
	return Valuate(ctx, b.Ledger(), oracle, opts...)
}
