package gestor

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/gestor/date"
	"github.com/shopspring/decimal"
)

// CSVHeader is the column order of the persisted tabular form.
var CSVHeader = []string{"date", "security_id", "quantity", "amount", "kind", "commission"}

// legacyHeader maps the column names of spreadsheets exported by the previous
// tracker to their canonical names.
var legacyHeader = map[string]string{
	"fecha":    "date",
	"ticker":   "security_id",
	"cantidad": "quantity",
	"precio":   "amount",
	"tipo":     "kind",
	"comision": "commission",
}

// DecodeCSV reads a ledger in the tabular form. The header row is required;
// columns are matched by name, so their order does not matter, and the legacy
// Spanish names are accepted. Amounts are given currency.
//
// A malformed row fails the whole decoding, the error tells its line.
func DecodeCSV(r io.Reader, currency string) (Ledger, error) {
	l := Ledger{currency: currency}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return l, nil
	}
	if err != nil {
		return Ledger{}, fmt.Errorf("could not read header: %w", err)
	}
	columns := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := legacyHeader[name]; ok {
			name = canonical
		}
		columns[name] = i
	}
	for _, name := range CSVHeader[:5] {
		if _, ok := columns[name]; !ok {
			return Ledger{}, fmt.Errorf("missing column %q in header %q", name, header)
		}
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Ledger{}, fmt.Errorf("could not read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if strings.Join(record, "") == "" {
			continue // Skip empty lines
		}

		tx, err := parseRecord(field, currency)
		if err == nil {
			err = l.push(tx)
		}
		if err != nil {
			return Ledger{}, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return l, nil
}

// parseRecord builds and validates a transaction from named fields.
func parseRecord(field func(string) string, currency string) (Transaction, error) {
	var tx Transaction
	var err error

	required := func(name string) (string, error) {
		v := field(name)
		if v == "" || strings.EqualFold(v, "nan") {
			return "", malformed(name, "is missing")
		}
		return v, nil
	}
	number := func(name string) (decimal.Decimal, error) {
		v, err := required(name)
		if err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, malformed(name, "%q is not a number", v)
		}
		return d, nil
	}

	v, err := required("date")
	if err != nil {
		return tx, err
	}
	if tx.Date, err = date.Parse(v); err != nil {
		return tx, malformed("date", "%v", err)
	}
	if v, err = required("security_id"); err != nil {
		return tx, err
	}
	tx.Security = NormalizeSecurity(v)
	q, err := number("quantity")
	if err != nil {
		return tx, err
	}
	tx.Quantity = Q(q)
	a, err := number("amount")
	if err != nil {
		return tx, err
	}
	tx.Amount = M(a, currency)
	if v, err = required("kind"); err != nil {
		return tx, err
	}
	if tx.Kind, err = ParseKind(v); err != nil {
		return tx, err
	}
	tx.Commission = M(decimal.Zero, currency)
	if c := field("commission"); c != "" && !strings.EqualFold(c, "nan") {
		d, err := decimal.NewFromString(c)
		if err != nil {
			return tx, malformed("commission", "%q is not a number", c)
		}
		tx.Commission = M(d, currency)
	}
	return tx, tx.Validate()
}

// EncodeCSV writes the ledger in the tabular form, header first, rows in
// their ledger order.
func EncodeCSV(w io.Writer, l Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, tx := range l.transactions {
		record := []string{
			tx.Date.String(),
			tx.Security,
			tx.Quantity.String(),
			tx.Amount.value.String(),
			tx.Kind.String(),
			tx.Commission.value.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeJSONL decodes transactions from a stream of JSONL data, one
// transaction per line. Rows without a currency get currency, rows in
// another currency are malformed.
func DecodeJSONL(r io.Reader, currency string) (Ledger, error) {
	scanner := bufio.NewScanner(r)
	l := Ledger{currency: currency}
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(strings.TrimSpace(string(lineBytes))) == 0 {
			continue // Skip empty lines
		}
		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return Ledger{}, fmt.Errorf("line %d: %w", line, err)
		}
		if err := l.push(tx); err != nil {
			return Ledger{}, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Ledger{}, fmt.Errorf("error reading from input: %w", err)
	}
	return l, nil
}

// EncodeTransaction marshals a single transaction to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeJSONL writes the ledger in JSONL format, rows in their ledger order.
func EncodeJSONL(w io.Writer, l Ledger) error {
	for _, tx := range l.transactions {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
