// Package analytics derives bankroll and performance figures from a ledger.
// Every function is a pure computation over the records it is given, in
// ledger order (most recent first).
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/betledger/config"
	"github.com/rustyeddy/betledger/wager"
)

// Summary is the full set of figures shown for a ledger.
type Summary struct {
	Count        int `json:"count"`
	ActiveCount  int `json:"activeCount"`
	SettledCount int `json:"settledCount"`
	WinCount     int `json:"winCount"`
	LoseCount    int `json:"loseCount"`

	TotalStake  float64 `json:"totalStake"`
	TotalProfit float64 `json:"totalProfit"`
	ActiveStake float64 `json:"activeStake"`
	Bankroll    float64 `json:"bankroll"`
	Balance     float64 `json:"balance"`

	WinningRate          float64 `json:"winningRate"`
	ConsecutiveLosses    int     `json:"consecutiveLosses"`
	MaxConsecutiveLosses int     `json:"maxConsecutiveLosses"`
	Drawdown             float64 `json:"drawdown"`

	AverageStake   float64 `json:"averageStake"`
	AverageOdds    float64 `json:"averageOdds"`
	ROI            float64 `json:"roi"`
	TargetProgress float64 `json:"targetProgress"`

	ProfitByBetType map[string]float64 `json:"profitByBetType"`
	Snapshots       []Snapshot         `json:"snapshots"`
	Trend           []TrendPoint       `json:"trend"`
	Periods         []Period           `json:"periods"`
}

// Compute derives every figure in one pass over the configuration.
func Compute(records []wager.Record, cfg config.RiskConfig) Summary {
	s := Summary{
		Count:                len(records),
		TotalStake:           TotalStake(records),
		TotalProfit:          TotalProfit(records),
		ActiveStake:          ActiveStake(records),
		Bankroll:             Bankroll(records, cfg.StartingCapital),
		ConsecutiveLosses:    ConsecutiveLosses(records),
		MaxConsecutiveLosses: MaxConsecutiveLosses(records),
		Drawdown:             Drawdown(records, cfg.StartingCapital),
		ProfitByBetType:      ProfitByBetType(records),
		Snapshots:            Snapshots(records),
		Periods:              WeeklyPeriods(records),
	}
	s.Trend = TrendSeries(s.Snapshots, cfg.StartingCapital)
	s.Balance = add(cfg.StartingCapital, s.TotalProfit)

	odds := decimal.Zero
	for _, r := range records {
		if r.Status.Active() {
			s.ActiveCount++
			odds = odds.Add(decimal.NewFromFloat(r.Odds))
		}
		if r.Status != wager.StatusSettled {
			continue
		}
		s.SettledCount++
		switch r.Result {
		case wager.ResultWin:
			s.WinCount++
		case wager.ResultLose:
			s.LoseCount++
		}
	}

	if s.SettledCount > 0 {
		s.WinningRate = float64(s.WinCount) / float64(s.SettledCount)
	}
	if s.ActiveCount > 0 {
		n := decimal.NewFromInt(int64(s.ActiveCount))
		s.AverageStake = decimal.NewFromFloat(s.TotalStake).Div(n).InexactFloat64()
		s.AverageOdds = odds.Div(n).InexactFloat64()
	}
	if s.TotalStake > 0 {
		s.ROI = s.TotalProfit / s.TotalStake
	}
	if target := cfg.StartingCapital * cfg.TargetMonthlyReturn; target > 0 {
		s.TargetProgress = s.TotalProfit / target
	}
	return s
}

// TotalStake sums the stake of betting and settled records. Drafts are
// not money on the table.
func TotalStake(records []wager.Record) float64 {
	sum := decimal.Zero
	for _, r := range records {
		if r.Status.Active() {
			sum = sum.Add(decimal.NewFromFloat(r.Stake))
		}
	}
	return sum.InexactFloat64()
}

// TotalProfit sums the profit of settled records.
func TotalProfit(records []wager.Record) float64 {
	sum := decimal.Zero
	for _, r := range records {
		if r.Status == wager.StatusSettled {
			sum = sum.Add(decimal.NewFromFloat(r.Profit))
		}
	}
	return sum.InexactFloat64()
}

// ActiveStake is the capital tied up in wagers that are still running.
func ActiveStake(records []wager.Record) float64 {
	sum := decimal.Zero
	for _, r := range records {
		if r.Status == wager.StatusBetting {
			sum = sum.Add(decimal.NewFromFloat(r.Stake))
		}
	}
	return sum.InexactFloat64()
}

// Bankroll is the capital available for a new wager:
// starting capital plus settled profit minus stakes still at risk.
func Bankroll(records []wager.Record, startingCapital float64) float64 {
	return decimal.NewFromFloat(startingCapital).
		Add(decimal.NewFromFloat(TotalProfit(records))).
		Sub(decimal.NewFromFloat(ActiveStake(records))).
		InexactFloat64()
}

// ConsecutiveLosses counts the current losing streak over settled records,
// most recent first. A win ends the walk; results other than win and lose
// are skipped.
func ConsecutiveLosses(records []wager.Record) int {
	streak := 0
	for _, r := range records {
		if r.Status != wager.StatusSettled {
			continue
		}
		switch r.Result {
		case wager.ResultLose:
			streak++
		case wager.ResultWin:
			return streak
		}
	}
	return streak
}

// MaxConsecutiveLosses is the longest losing streak anywhere in the ledger,
// under the same rules as ConsecutiveLosses.
func MaxConsecutiveLosses(records []wager.Record) int {
	current, longest := 0, 0
	for _, r := range records {
		if r.Status != wager.StatusSettled {
			continue
		}
		switch r.Result {
		case wager.ResultLose:
			current++
			longest = max(longest, current)
		case wager.ResultWin:
			current = 0
		}
	}
	return longest
}

// Drawdown walks an equity curve from the starting capital through each
// record's profit in ledger order and returns the deepest fall below the
// running peak as a fraction of that peak (zero or negative).
func Drawdown(records []wager.Record, startingCapital float64) float64 {
	equity := decimal.NewFromFloat(startingCapital)
	peak := equity
	worst := decimal.Zero

	for _, r := range records {
		equity = equity.Add(decimal.NewFromFloat(r.Profit))
		if equity.GreaterThan(peak) {
			peak = equity
		}
		if !peak.IsPositive() {
			continue
		}
		dd := equity.Sub(peak).Div(peak)
		if dd.LessThan(worst) {
			worst = dd
		}
	}
	return worst.InexactFloat64()
}

// ProfitByBetType groups settled profit by bet type label, rounded to cents.
func ProfitByBetType(records []wager.Record) map[string]float64 {
	groups := make(map[string]decimal.Decimal)
	for _, r := range records {
		if r.Status != wager.StatusSettled {
			continue
		}
		key := r.BetType
		if key == "" {
			key = "other"
		}
		groups[key] = groups[key].Add(decimal.NewFromFloat(r.Profit))
	}

	out := make(map[string]float64, len(groups))
	for k, v := range groups {
		out[k] = v.Round(2).InexactFloat64()
	}
	return out
}

func add(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
