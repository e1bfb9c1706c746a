package risk

import "fmt"

// DrawdownWarning is the drawdown below which the gate warns.
const DrawdownWarning = -0.2

const (
	CodeLossStreak = "LOSS_STREAK"
	CodeDrawdown   = "DRAWDOWN"
)

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Decision is advisory. Nothing in this package blocks a wager.
type Decision struct {
	ShouldPause bool        `json:"shouldPause"`
	Violations  []Violation `json:"violations"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
}

// Warnings returns the violation messages in order.
func (d Decision) Warnings() []string {
	out := make([]string, 0, len(d.Violations))
	for _, v := range d.Violations {
		out = append(out, v.Msg)
	}
	return out
}

// StopLossCheck pauses once the losing streak reaches limit and warns when
// drawdown falls past DrawdownWarning.
func StopLossCheck(consecutiveLosses, limit int, drawdown float64) Decision {
	d := Decision{Violations: []Violation{}}

	if consecutiveLosses >= limit {
		d.ShouldPause = true
		d.add(CodeLossStreak,
			fmt.Sprintf("%d consecutive losses (limit %d), take a break", consecutiveLosses, limit))
	}
	if drawdown < DrawdownWarning {
		d.add(CodeDrawdown,
			fmt.Sprintf("drawdown %.2f%% is past %.0f%%, reduce stake size", 100*drawdown, 100*DrawdownWarning))
	}
	return d
}
