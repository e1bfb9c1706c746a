package wager

import "github.com/shopspring/decimal"

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// Round2 rounds a money amount to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// OddsProduct multiplies decimal odds exactly. Non-positive odds count as 1.
func OddsProduct(odds ...float64) float64 {
	p := one
	for _, o := range odds {
		if o <= 0 {
			continue
		}
		p = p.Mul(decimal.NewFromFloat(o))
	}
	return p.InexactFloat64()
}

// Sum adds amounts without accumulating binary floating point error.
func Sum(values ...float64) float64 {
	s := decimal.Zero
	for _, v := range values {
		s = s.Add(decimal.NewFromFloat(v))
	}
	return s.InexactFloat64()
}

// ProfitFor derives the signed profit of a wager. Anything that is not a
// settled record with a decided result earns zero.
func ProfitFor(status Status, result Result, stake, odds, fee float64) float64 {
	if status != StatusSettled {
		return 0
	}

	s := decimal.NewFromFloat(stake)
	f := decimal.NewFromFloat(fee)
	gain := s.Mul(decimal.NewFromFloat(odds).Sub(one))

	var p decimal.Decimal
	switch result {
	case ResultWin:
		p = gain.Sub(f)
	case ResultLose:
		p = s.Neg().Sub(f)
	case ResultHalfWin:
		p = gain.Div(two).Sub(f)
	case ResultHalfLose:
		p = s.Neg().Div(two).Sub(f)
	default:
		return 0
	}
	return p.InexactFloat64()
}
