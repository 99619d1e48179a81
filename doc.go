// Package gestor provides the ledger and cost-basis engine of a personal
// investment tracker.
//
// The core functionalities include:
//   - Ledger: an ordered list of buy (Compra) and sell (Venta) operations,
//     handled as a value so every operation takes a ledger and returns a new one.
//   - Reconciliation: selling part of a position collapses all its purchases
//     into a single weighted-average lot, whose remaining cost is the
//     committed cost minus the cost basis declared by the sale.
//   - Valuation: a stateless computation of invested capital, market value,
//     net profit and return on investment from the ledger and a PriceOracle.
//     Missing prices degrade to zero and are flagged, they never fail the
//     valuation.
//   - Book: an editing session that serializes mutations and persists the
//     whole ledger through a Store after each successful change.
//
// Rows are persisted in a flat tabular form
// (date, security_id, quantity, amount, kind, commission); see DecodeCSV and
// DecodeJSONL.
//
// This package serves as the foundational logic for the `gst` command-line
// tool.
package gestor
