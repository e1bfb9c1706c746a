// Package wager holds the ledger's unit of record and the rules that turn
// loosely shaped input into a canonical, self-consistent wager.
package wager

import (
	"slices"
)

// Status is the lifecycle state of a wager record.
type Status string

const (
	StatusSaved   Status = "saved"
	StatusBetting Status = "betting"
	StatusSettled Status = "settled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusSaved, StatusBetting, StatusSettled:
		return true
	}
	return false
}

// Active reports whether the stake of a record in this state counts as
// committed money (drafts do not).
func (s Status) Active() bool {
	return s == StatusBetting || s == StatusSettled
}

// Result is the outcome of a wager.
type Result string

const (
	ResultPending  Result = "pending"
	ResultWin      Result = "win"
	ResultLose     Result = "lose"
	ResultHalfWin  Result = "half-win"
	ResultHalfLose Result = "half-lose"
)

// Valid reports whether r is a known outcome.
func (r Result) Valid() bool {
	switch r {
	case ResultPending, ResultWin, ResultLose, ResultHalfWin, ResultHalfLose:
		return true
	}
	return false
}

// Decided reports whether r is a final outcome.
func (r Result) Decided() bool {
	return r.Valid() && r != ResultPending
}

// WagerType distinguishes single-leg wagers from parlays.
type WagerType string

const (
	Single WagerType = "single"
	Parlay WagerType = "parlay"
)

// DefaultBetType labels a leg that did not say what market it was placed on.
const DefaultBetType = "win-draw-lose"

// Leg is one match's contribution to a wager.
type Leg struct {
	ID        string   `json:"id"`
	HomeTeam  string   `json:"homeTeam"`
	AwayTeam  string   `json:"awayTeam"`
	League    string   `json:"league"`
	MatchTime string   `json:"matchTime"`
	BetType   string   `json:"betType"`
	Odds      float64  `json:"odds"`
	Stake     float64  `json:"stake"`
	Selection string   `json:"selection"`
	Handicap  *float64 `json:"handicap,omitempty"`
	Note      string   `json:"note"`
}

// Record is a wager as the ledger stores it.
//
// MatchName, League, BetType, WagerType, Odds (unless OddsLocked) and Profit
// are derived from the legs, status and result by Normalize.
type Record struct {
	ID         string    `json:"id"`
	MatchName  string    `json:"matchName"`
	League     string    `json:"league"`
	BetType    string    `json:"betType"`
	WagerType  WagerType `json:"wagerType"`
	Stake      float64   `json:"stake"`
	Odds       float64   `json:"odds"`
	OddsLocked bool      `json:"oddsLocked"`
	Platform   string    `json:"platform"`
	Result     Result    `json:"result"`
	Status     Status    `json:"status"`
	Profit     float64   `json:"profit"`
	Fee        float64   `json:"fee"`
	BetTime    BetTime   `json:"betTime"`
	Tags       []string  `json:"tags"`
	Note       string    `json:"note"`
	Legs       []Leg     `json:"legs"`
}

// Clone returns a deep copy of r so callers cannot alias ledger state.
func (r Record) Clone() Record {
	out := r
	out.Tags = slices.Clone(r.Tags)
	if r.Legs != nil {
		out.Legs = make([]Leg, len(r.Legs))
		for i, l := range r.Legs {
			if l.Handicap != nil {
				h := *l.Handicap
				l.Handicap = &h
			}
			out.Legs[i] = l
		}
	}
	return out
}

// IsParlay reports whether r combines more than one leg.
func (r Record) IsParlay() bool {
	return len(r.Legs) > 1
}
