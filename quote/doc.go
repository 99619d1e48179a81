// Package quote provides price oracles for gestor valuations.
//
// All oracles answer "no price" with ok=false rather than an error: the
// valuation treats a missing price as zero and flags the security.
package quote
