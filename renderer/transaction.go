package renderer

import (
	"fmt"

	"github.com/etnz/gestor"
)

// Transaction renders a transaction to a sentence.
func Transaction(tx gestor.Transaction) string {
	switch tx.Kind {
	case gestor.Buy:
		return fmt.Sprintf("Bought %s %s for %s on %s", tx.Quantity, tx.Security, tx.Amount, tx.Date)
	case gestor.Sell:
		return fmt.Sprintf("Sold %s %s removing %s of cost basis on %s", tx.Quantity, tx.Security, tx.Amount, tx.Date)
	default:
		return tx.String()
	}
}

// Position renders the state of a position to a sentence.
func Position(p gestor.Position) string {
	if p.IsClosed() {
		return fmt.Sprintf("%s position closed", p.Security)
	}
	return fmt.Sprintf("%s position: %s units for %s (average %s)", p.Security, p.Quantity, p.CostBasis, p.AverageCost().Round(2))
}

// TransactionRow is a ledger row with its index, the one expected to remove it.
type TransactionRow struct {
	Index      int
	Date       string
	Security   string
	Kind       string
	Quantity   gestor.Quantity
	Amount     gestor.Money
	UnitCost   gestor.Money
	Commission gestor.Money
}

// Transactions is an indexed listing of ledger rows.
type Transactions struct {
	Rows []TransactionRow
}

// NewTransactions lists the rows of l accepted by all filters.
func NewTransactions(l gestor.Ledger, filters ...func(gestor.Transaction) bool) *Transactions {
	t := &Transactions{Rows: make([]TransactionRow, 0)}
	for i, tx := range l.Transactions(filters...) {
		t.Rows = append(t.Rows, TransactionRow{
			Index:      i,
			Date:       tx.Date.String(),
			Security:   tx.Security,
			Kind:       tx.Kind.String(),
			Quantity:   tx.Quantity,
			Amount:     tx.Amount,
			UnitCost:   tx.UnitCost().Round(2),
			Commission: tx.Commission,
		})
	}
	return t
}

const transactionsMarkdownTemplate = `| # | Date | Ticker | Kind | Quantity | Amount | Unit | Commission |
|---:|:---|:---|:---|---:|---:|---:|---:|
{{- range .Rows }}
| {{ .Index }} | {{ .Date }} | {{ .Security }} | {{ .Kind }} | {{ .Quantity }} | {{ .Amount }} | {{ .UnitCost }} | {{ .Commission }} |
{{- end }}
`

// TransactionsMarkdown renders the listing as a markdown table.
func TransactionsMarkdown(t *Transactions) string {
	return execute("transactions", transactionsMarkdownTemplate, t)
}
