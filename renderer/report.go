package renderer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/etnz/gestor"
	"github.com/etnz/gestor/date"
)

// ReportHeader is the column order of the CSV report.
var ReportHeader = []string{"fecha", "ticker", "cantidad", "tipo", "precio_actual", "precio_compra", "valor_actual", "ganancia_perdida"}

// ReportRow is one ledger operation with its current valuation.
type ReportRow struct {
	Fecha    date.Date       `json:"fecha"`
	Ticker   string          `json:"ticker"`
	Cantidad gestor.Quantity `json:"cantidad"`
	Tipo     gestor.Kind     `json:"tipo"`
	// PrecioCompra is the row amount: the committed capital of a buy, the
	// removed cost basis of a sell.
	PrecioCompra gestor.Money `json:"precio_compra"`
	// Valued is true for buy rows, the only ones carrying the fields below.
	Valued          bool         `json:"valued"`
	PriceAvailable  bool         `json:"price_available"`
	PrecioActual    gestor.Money `json:"precio_actual"`
	ValorActual     gestor.Money `json:"valor_actual"`
	GananciaPerdida gestor.Money `json:"ganancia_perdida"`
}

// Report is the per operation investment report closed by a TOTALES row.
type Report struct {
	Rows []ReportRow `json:"rows"`
	// Totals from the snapshot.
	TotalInvested gestor.Money   `json:"total_invested"`
	TotalValue    gestor.Money   `json:"total_value"`
	NetProfit     gestor.Money   `json:"net_profit"`
	ROI           gestor.Percent `json:"roi"`
	Degraded      []string       `json:"degraded,omitempty"`
}

// NewReport builds the report of l, valued with the prices of s.
func NewReport(l gestor.Ledger, s *gestor.Snapshot) *Report {
	r := &Report{
		Rows:          make([]ReportRow, 0, l.Len()),
		TotalInvested: s.TotalInvested,
		TotalValue:    s.TotalValue,
		NetProfit:     s.NetProfit,
		ROI:           s.ROI,
		Degraded:      s.Degraded(),
	}
	for _, tx := range l.Transactions() {
		row := ReportRow{
			Fecha:        tx.Date,
			Ticker:       tx.Security,
			Cantidad:     tx.Quantity,
			Tipo:         tx.Kind,
			PrecioCompra: tx.Amount,
		}
		if tx.Kind == gestor.Buy {
			v, _ := s.Security(tx.Security)
			row.Valued = true
			row.PriceAvailable = v.PriceAvailable
			row.PrecioActual = v.Price
			row.ValorActual = v.Price.Mul(tx.Quantity)
			row.GananciaPerdida = row.ValorActual.Sub(tx.Amount)
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

// amount formats m for the CSV report: no currency symbol, cents.
func amount(m gestor.Money) string { return m.Decimal().StringFixed(2) }

// WriteCSV writes the report rows then the TOTALES row. Sell rows leave the
// valuation columns empty.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return err
	}
	for _, row := range r.Rows {
		record := []string{
			row.Fecha.String(),
			row.Ticker,
			row.Cantidad.String(),
			row.Tipo.String(),
			"",
			amount(row.PrecioCompra),
			"",
			"",
		}
		if row.Valued {
			record[4] = amount(row.PrecioActual)
			record[6] = amount(row.ValorActual)
			record[7] = amount(row.GananciaPerdida)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	totals := []string{"TOTALES", "", "", "", "", amount(r.TotalInvested), amount(r.TotalValue), amount(r.NetProfit)}
	if err := cw.Write(totals); err != nil {
		return fmt.Errorf("failed to write report totals: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

const reportMarkdownTemplate = `# Investment Report

| Fecha | Ticker | Cantidad | Tipo | Precio Actual | Precio Compra | Valor Actual | Ganancia/Pérdida |
|:---|:---|---:|:---|---:|---:|---:|---:|
{{- range .Rows }}
| {{ .Fecha }} | {{ .Ticker }} | {{ .Cantidad }} | {{ .Tipo }} | {{ if .Valued }}{{ if .PriceAvailable }}{{ .PrecioActual }}{{ else }}n/a{{ end }}{{ end }} | {{ .PrecioCompra }} | {{ if .Valued }}{{ .ValorActual }}{{ end }} | {{ if .Valued }}{{ .GananciaPerdida.SignedString }}{{ end }} |
{{- end }}
| **TOTALES** | | | | | **{{ .TotalInvested }}** | **{{ .TotalValue }}** | **{{ .NetProfit.SignedString }}** |

Return on investment: **{{ .ROI.SignedString }}**
{{- if .Degraded }}

No current price for {{ join .Degraded ", " }}: valued at zero.
{{- end }}
`

// ReportMarkdown renders the report as a markdown table.
func ReportMarkdown(r *Report) string {
	return execute("report", reportMarkdownTemplate, r)
}

var funcs = template.FuncMap{"join": strings.Join}

// execute renders data with the template text.
func execute(name, text string, data any) string {
	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return fmt.Sprintf("Error parsing template %q: %v", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("Error executing template %q: %v", name, err)
	}
	return b.String()
}
