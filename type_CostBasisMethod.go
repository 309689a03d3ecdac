package portfolios

import (
	"fmt"
	"strings"
)

// CostBasisMethod defines the method for calculating cost basis.
type CostBasisMethod int

const (
	// AverageCost averages the unit cost of every lot ever bought. Lots are never
	// removed from this view when shares are sold.
	AverageCost CostBasisMethod = iota
	// FIFO (First-In, First-Out) assumes the first shares purchased are the first ones sold.
	FIFO
	// LIFO (Last-In, First-Out) assumes the last shares purchased are the first ones sold.
	LIFO
)

// CostBasisMethods lists every supported method.
var CostBasisMethods = []CostBasisMethod{AverageCost, FIFO, LIFO}

func (m CostBasisMethod) String() string {
	switch m {
	case AverageCost:
		return "average"
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses the name of a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "average", "avg":
		return AverageCost, nil
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}
