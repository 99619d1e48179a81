package gestor

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientHoldings is returned when a sell asks for more units than
	// the ledger holds for the security, or when it holds none at all.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	// ErrMalformedRecord is returned when a ledger row misses a required field
	// or carries an out-of-range value. Malformed rows are never stored.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrCurrencyMismatch is returned when a valuation is asked in another
	// currency than the ledger's. There is no conversion.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// InsufficientHoldingsError details a rejected sell.
type InsufficientHoldingsError struct {
	Security  string
	Requested Quantity
	Available Quantity
}

func (e *InsufficientHoldingsError) Error() string {
	if e.Available.IsZero() {
		return fmt.Sprintf("%v: no holdings of %s to sell", ErrInsufficientHoldings, e.Security)
	}
	return fmt.Sprintf("%v: cannot sell %s of %s, position is only %s", ErrInsufficientHoldings, e.Requested, e.Security, e.Available)
}

func (e *InsufficientHoldingsError) Unwrap() error { return ErrInsufficientHoldings }

// MalformedRecordError details which field of a record was rejected.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrMalformedRecord, e.Field, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

func malformed(field, format string, args ...any) error {
	return &MalformedRecordError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
