package risk

import (
	"github.com/rustyeddy/betledger/analytics"
	"github.com/rustyeddy/betledger/config"
)

// Inputs is everything a stake recommendation depends on.
type Inputs struct {
	Bankroll          float64
	Odds              float64
	Probability       float64
	FixedRatio        float64
	KellyFactor       float64
	StopLossLimit     int
	ConsecutiveLosses int
	Drawdown          float64
	Tolerance         string // conservative, balanced or aggressive
}

// InputsFor fills Inputs from the ledger summary and the risk settings.
func InputsFor(s analytics.Summary, cfg config.RiskConfig, odds, probability float64) Inputs {
	return Inputs{
		Bankroll:          s.Bankroll,
		Odds:              odds,
		Probability:       probability,
		FixedRatio:        cfg.FixedRatio,
		KellyFactor:       cfg.KellyFactor,
		StopLossLimit:     cfg.StopLossLimit,
		ConsecutiveLosses: s.ConsecutiveLosses,
		Drawdown:          s.Drawdown,
		Tolerance:         cfg.RiskTolerance,
	}
}

type Recommendation struct {
	Bankroll  float64  `json:"bankroll"`
	Fixed     float64  `json:"fixed"`
	Kelly     float64  `json:"kelly"`
	Suggested float64  `json:"suggested"`
	Gate      Decision `json:"gate"`
}

// Recommend runs both sizers and the stop-loss gate. Suggested is zero while
// the gate says pause. Without odds the fixed ratio stake is suggested;
// with odds, conservative takes the smaller of the two sizes, aggressive the
// larger, and balanced the fixed ratio stake capped by a positive Kelly stake.
func Recommend(in Inputs) Recommendation {
	r := Recommendation{
		Bankroll: in.Bankroll,
		Fixed:    FixedRatioStake(in.Bankroll, in.FixedRatio),
		Gate:     StopLossCheck(in.ConsecutiveLosses, in.StopLossLimit, in.Drawdown),
	}
	if in.Odds > 1 {
		r.Kelly = KellyStake(in.Bankroll, in.Odds, in.Probability, in.KellyFactor)
	}
	if r.Gate.ShouldPause || in.Bankroll <= 0 {
		return r
	}
	if in.Odds <= 1 {
		r.Suggested = r.Fixed
		return r
	}

	switch in.Tolerance {
	case config.ToleranceConservative:
		r.Suggested = min(r.Fixed, r.Kelly)
	case config.ToleranceAggressive:
		r.Suggested = max(r.Fixed, r.Kelly)
	default:
		r.Suggested = r.Fixed
		if r.Kelly > 0 && r.Kelly < r.Fixed {
			r.Suggested = r.Kelly
		}
	}
	return r
}
