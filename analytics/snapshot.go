package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/betledger/wager"
)

// Snapshot is one calendar day of committed wagers.
type Snapshot struct {
	Date   string  `json:"date"`
	Stake  float64 `json:"stake"`
	Profit float64 `json:"profit"`
}

// TrendPoint is a Snapshot with the running balance after that day.
type TrendPoint struct {
	Snapshot
	Balance float64 `json:"balance"`
}

// Period aggregates one ISO week.
type Period struct {
	Week   string  `json:"week"`
	Stake  float64 `json:"stake"`
	Profit float64 `json:"profit"`
	Count  int     `json:"count"`
}

type bucket struct {
	stake, profit decimal.Decimal
	count         int
}

// Snapshots groups betting and settled records by the day they were placed,
// ascending by date.
func Snapshots(records []wager.Record) []Snapshot {
	days := group(records, func(r wager.Record) string { return r.BetTime.Day() })

	out := make([]Snapshot, 0, len(days))
	for _, day := range sortedKeys(days) {
		b := days[day]
		out = append(out, Snapshot{
			Date:   day,
			Stake:  b.stake.InexactFloat64(),
			Profit: b.profit.InexactFloat64(),
		})
	}
	return out
}

// TrendSeries carries a running balance, rounded to cents, through the
// snapshots starting from startingCapital.
func TrendSeries(snapshots []Snapshot, startingCapital float64) []TrendPoint {
	rolling := decimal.NewFromFloat(startingCapital)
	out := make([]TrendPoint, 0, len(snapshots))
	for _, s := range snapshots {
		rolling = rolling.Add(decimal.NewFromFloat(s.Profit))
		out = append(out, TrendPoint{Snapshot: s, Balance: rolling.Round(2).InexactFloat64()})
	}
	return out
}

// WeeklyPeriods groups betting and settled records by ISO week ("2024-W09").
func WeeklyPeriods(records []wager.Record) []Period {
	weeks := group(records, func(r wager.Record) string {
		y, w := r.BetTime.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	})

	out := make([]Period, 0, len(weeks))
	for _, week := range sortedKeys(weeks) {
		b := weeks[week]
		out = append(out, Period{
			Week:   week,
			Stake:  b.stake.InexactFloat64(),
			Profit: b.profit.InexactFloat64(),
			Count:  b.count,
		})
	}
	return out
}

func group(records []wager.Record, key func(wager.Record) string) map[string]*bucket {
	out := make(map[string]*bucket)
	for _, r := range records {
		if !r.Status.Active() || r.BetTime.IsZero() {
			continue
		}
		k := key(r)
		b, ok := out[k]
		if !ok {
			b = &bucket{}
			out[k] = b
		}
		b.stake = b.stake.Add(decimal.NewFromFloat(r.Stake))
		b.profit = b.profit.Add(decimal.NewFromFloat(r.Profit))
		b.count++
	}
	return out
}
