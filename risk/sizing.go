// Package risk sizes the next stake from the bankroll and gates betting
// after losing runs. Everything here is a pure function.
package risk

import "github.com/shopspring/decimal"

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

func cents(v decimal.Decimal) float64 {
	return v.Round(2).InexactFloat64()
}

// FixedRatioStake stakes a fixed fraction of the bankroll. The ratio is
// clamped into [0, 1].
func FixedRatioStake(bankroll, ratio float64) float64 {
	return cents(decimal.NewFromFloat(bankroll).Mul(decimal.NewFromFloat(clamp(ratio, 0, 1))))
}

// KellyStake sizes a stake with the Kelly criterion scaled by adjustment
// (0.5 is half Kelly). Odds are decimal odds, probability is the estimated
// chance of winning. A wager with no edge stakes 0.
func KellyStake(bankroll, odds, probability, adjustment float64) float64 {
	b := max(odds-1, 0)
	if bankroll == 0 || b == 0 {
		return 0
	}
	p := clamp(probability, 0, 1)

	kelly := (p*(b+1) - 1) / b
	ratio := clamp(kelly*adjustment, 0, 1)
	return cents(decimal.NewFromFloat(bankroll).Mul(decimal.NewFromFloat(ratio)))
}
