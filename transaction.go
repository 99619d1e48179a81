package gestor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/gestor/date"
	"github.com/shopspring/decimal"
)

// Kind tells whether a transaction bought or sold units.
type Kind int

const (
	Buy Kind = iota + 1
	Sell
)

// String returns the persisted name of the kind, as found in the ledger files.
func (k Kind) String() string {
	switch k {
	case Buy:
		return "Compra"
	case Sell:
		return "Venta"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a persisted kind. Besides "Compra" and "Venta" it accepts
// "buy" and "sell", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compra", "buy":
		return Buy, nil
	case "venta", "sell":
		return Sell, nil
	default:
		return 0, malformed("kind", "%q is neither Compra nor Venta", s)
	}
}

func (k Kind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// NormalizeSecurity returns the canonical form of a ticker: trimmed and upper case.
func NormalizeSecurity(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Transaction is one ledger row: a buy or a sell of a security.
//
// For a Buy, Amount is the total capital committed for Quantity units (the
// unit price times the quantity). For a Sell, Amount is the total cost basis
// removed from the position for the sold Quantity; it is not a sale price.
type Transaction struct {
	Date       date.Date
	Security   string
	Quantity   Quantity
	Amount     Money
	Kind       Kind
	Commission Money
}

// NewBuy creates a Buy row for quantity units bought at price per unit.
func NewBuy(day date.Date, security string, quantity Quantity, price, commission Money) Transaction {
	return Transaction{
		Date:       day,
		Security:   NormalizeSecurity(security),
		Quantity:   quantity,
		Amount:     price.Mul(quantity),
		Kind:       Buy,
		Commission: commission,
	}
}

// NewSell creates a Sell row removing costBasis from the position.
func NewSell(day date.Date, security string, quantity Quantity, costBasis, commission Money) Transaction {
	return Transaction{
		Date:       day,
		Security:   NormalizeSecurity(security),
		Quantity:   quantity,
		Amount:     costBasis,
		Kind:       Sell,
		Commission: commission,
	}
}

// Validate checks that all required fields are present and in range.
//
// A Buy amount is allowed to be negative: a synthetic lot may carry a
// negative remaining cost when a sell removed more than was committed.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return malformed("date", "is missing")
	}
	if t.Security == "" {
		return malformed("security_id", "is missing")
	}
	if !t.Quantity.IsPositive() {
		return malformed("quantity", "must be positive, got %s", t.Quantity)
	}
	switch t.Kind {
	case Buy:
	case Sell:
		if t.Amount.IsNegative() {
			return malformed("amount", "sell cost basis must not be negative, got %s", t.Amount.value)
		}
	default:
		return malformed("kind", "is missing")
	}
	if t.Commission.IsNegative() {
		return malformed("commission", "must not be negative, got %s", t.Commission.value)
	}
	return nil
}

// UnitCost is the Amount spread over Quantity.
func (t Transaction) UnitCost() Money {
	if t.Quantity.IsZero() {
		return Money{cur: t.Amount.cur}
	}
	return t.Amount.Div(t.Quantity)
}

func (t Transaction) Equal(o Transaction) bool {
	return t.Date == o.Date && t.Security == o.Security && t.Kind == o.Kind &&
		t.Quantity.Equal(o.Quantity) && t.Amount.Equal(o.Amount) && t.Commission.Equal(o.Commission)
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s for %s", t.Date, t.Kind, t.Quantity, t.Security, t.Amount)
}

// MarshalJSON writes the fields in their tabular order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", t.Date)
	w.Append("security_id", t.Security)
	w.Append("quantity", t.Quantity)
	w.Append("amount", t.Amount)
	w.Append("kind", t.Kind)
	if !t.Commission.IsZero() {
		w.Append("commission", t.Commission)
	}
	w.Optional("currency", t.Amount.cur)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		Date       date.Date        `json:"date"`
		Security   string           `json:"security_id"`
		Quantity   *decimal.Decimal `json:"quantity"`
		Amount     *decimal.Decimal `json:"amount"`
		Kind       Kind             `json:"kind"`
		Commission decimal.Decimal  `json:"commission"`
		Currency   string           `json:"currency"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	if temp.Quantity == nil {
		return malformed("quantity", "is missing")
	}
	if temp.Amount == nil {
		return malformed("amount", "is missing")
	}
	*t = Transaction{
		Date:       temp.Date,
		Security:   NormalizeSecurity(temp.Security),
		Quantity:   Q(*temp.Quantity),
		Amount:     M(*temp.Amount, temp.Currency),
		Kind:       temp.Kind,
		Commission: M(temp.Commission, temp.Currency),
	}
	return nil
}
