package renderer

import (
	"github.com/etnz/gestor"
)

// Holding is the point in time valuation of the portfolio, per security.
type Holding struct {
	Basis         string            `json:"basis"`
	Securities    []HoldingSecurity `json:"securities"`
	TotalInvested gestor.Money      `json:"totalInvested"`
	TotalValue    gestor.Money      `json:"totalValue"`
	NetProfit     gestor.Money      `json:"netProfit"`
	ROI           gestor.Percent    `json:"roi"`
	Commissions   gestor.Money      `json:"commissions"`
}

// HoldingSecurity represents the valuation of a single security.
type HoldingSecurity struct {
	Ticker         string          `json:"ticker"`
	Quantity       gestor.Quantity `json:"quantity"`
	AverageCost    gestor.Money    `json:"averageCost"`
	Price          gestor.Money    `json:"price"`
	PriceAvailable bool            `json:"priceAvailable"`
	MarketValue    gestor.Money    `json:"marketValue"`
	NetInvested    gestor.Money    `json:"netInvested"`
	Profit         gestor.Money    `json:"profit"`
	ROI            gestor.Percent  `json:"roi"`
	Weight         gestor.Percent  `json:"weight"`
}

// NewHolding creates a Holding from a snapshot. Closed positions are listed
// only with closed set.
func NewHolding(s *gestor.Snapshot, closed bool) *Holding {
	h := &Holding{
		Basis:         s.Basis.String(),
		Securities:    make([]HoldingSecurity, 0, len(s.Securities)),
		TotalInvested: s.TotalInvested,
		TotalValue:    s.TotalValue,
		NetProfit:     s.NetProfit,
		ROI:           s.ROI,
		Commissions:   s.Commissions,
	}
	for _, v := range s.Securities {
		if v.BuyQuantity.IsZero() && !closed {
			continue
		}
		avg := gestor.M(0, v.BuyCost.Currency())
		if !v.BuyQuantity.IsZero() {
			avg = v.BuyCost.Div(v.BuyQuantity)
		}
		h.Securities = append(h.Securities, HoldingSecurity{
			Ticker:         v.Security,
			Quantity:       v.BuyQuantity,
			AverageCost:    avg,
			Price:          v.Price,
			PriceAvailable: v.PriceAvailable || v.BuyQuantity.IsZero(),
			MarketValue:    v.MarketValue,
			NetInvested:    v.NetInvested,
			Profit:         v.Profit,
			ROI:            v.ROI,
			Weight:         v.Weight,
		})
	}
	return h
}

const holdingMarkdownTemplate = `# Holding

Total Value: **{{ .TotalValue }}**, invested **{{ .TotalInvested }}** ({{ .Basis }}), net profit **{{ .NetProfit.SignedString }}** ({{ .ROI.SignedString }})

{{- if .Securities }}

| Ticker | Quantity | Average Cost | Price | Market Value | Invested | Profit | ROI | Weight |
|:---|---:|---:|---:|---:|---:|---:|---:|---:|
{{- range .Securities }}
| {{ .Ticker }} | {{ .Quantity }} | {{ .AverageCost.Round 2 }} | {{ if .PriceAvailable }}{{ .Price }}{{ else }}n/a{{ end }} | {{ .MarketValue }} | {{ .NetInvested }} | {{ .Profit.SignedString }} | {{ .ROI.SignedString }} | {{ .Weight }} |
{{- end }}
| **Total** | | | | **{{ .TotalValue }}** | **{{ .TotalInvested }}** | **{{ .NetProfit.SignedString }}** | **{{ .ROI.SignedString }}** | |
{{- end }}
{{- if not .Commissions.IsZero }}

Commissions paid: {{ .Commissions }}
{{- end }}
`

// SnapshotMarkdown renders the holding to markdown. Securities without a
// current price are marked.
func SnapshotMarkdown(h *Holding) string {
	return execute("holding", holdingMarkdownTemplate, h)
}
