package portfolios

import "fmt"

// Percent is a value expressed in percent: 12.5 means 12.5%.
type Percent float64

// Rate converts a fraction to a Percent: Rate(0.125) is 12.5%.
func Rate(fraction float64) Percent { return Percent(100 * fraction) }

func (p Percent) String() string { return fmt.Sprintf("%.2f%%", float64(p)) }

// SignedString shows the sign of p, and "-" when p rounds to zero.
func (p Percent) SignedString() string {
	s := fmt.Sprintf("%+.2f%%", float64(p))
	if s == "+0.00%" || s == "-0.00%" {
		return "-"
	}
	return s
}
