package gestor

import "fmt"

// InvestedBasis defines how a security's invested capital is derived from its rows.
type InvestedBasis int

const (
	// NetOfSales subtracts the cost basis declared on Sell rows from the Buy
	// rows cost: invested = buy cost − sell cost.
	NetOfSales InvestedBasis = iota
	// OpenCost only counts the capital still committed in Buy rows.
	OpenCost
)

func (m InvestedBasis) String() string {
	switch m {
	case NetOfSales:
		return "net"
	case OpenCost:
		return "open"
	default:
		return "unknown"
	}
}

// ParseInvestedBasis parses a string into an InvestedBasis.
func ParseInvestedBasis(s string) (InvestedBasis, error) {
	switch s {
	case "net", "":
		return NetOfSales, nil
	case "open":
		return OpenCost, nil
	default:
		return 0, fmt.Errorf("unknown invested basis: %q", s)
	}
}
