package hportfolio

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

type Percent float64

// NotAPercent is returned by percentage computations that cannot be carried
// out, like a profit ratio over a zero cost basis.
var NotAPercent = Percent(math.NaN())

// percentOf returns (ratio × 100) rounded to 2 decimals.
func percentOf(ratio decimal.Decimal) Percent {
	return Percent(ratio.Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64())
}

// Valid reports whether p is an actual number.
func (p Percent) Valid() bool { return !math.IsNaN(float64(p)) }

func (p Percent) Equal(q Percent) bool {
	if !p.Valid() || !q.Valid() {
		return p.Valid() == q.Valid()
	}
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	if !p.Valid() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	if !p.Valid() {
		return "n/a"
	}
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
