package wager

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/betledger/internal/id"
)

// Normalize fills defaults and recomputes every derived field of r. It never
// fails: missing or malformed optional values are replaced by defaults.
// Normalizing an already normalized record returns it unchanged.
func Normalize(r Record, now time.Time) Record {
	r = r.Clone()

	if r.ID == "" {
		r.ID = id.NewAt(now)
	}
	if !r.Status.Valid() {
		r.Status = StatusSaved
	}
	if !r.Result.Valid() {
		r.Result = ResultPending
	}
	r.Stake = nonNegative(r.Stake)
	r.Fee = nonNegative(r.Fee)
	if r.BetTime.IsZero() {
		r.BetTime = NewBetTime(now)
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}

	if len(r.Legs) == 0 {
		leg, _ := FromLegacy(r, Payload{})
		r.Legs = []Leg{leg}
	}
	for i := range r.Legs {
		r.Legs[i] = normalizeLeg(r.Legs[i], r, i)
	}

	n := len(r.Legs)
	wasParlay := r.WagerType == Parlay || r.League == "parlay"
	if n > 1 {
		r.WagerType = Parlay
		r.BetType = fmt.Sprintf("parlay(%d)", n)
		r.League = "parlay"
		r.MatchName = fmt.Sprintf("%s and %d others", parlayAnchor(r.Legs[0]), n-1)
	} else {
		leg := r.Legs[0]
		r.WagerType = Single
		r.BetType = leg.BetType
		// The parlay labels never survive a shrink to one leg.
		switch {
		case leg.League != "":
			r.League = leg.League
		case wasParlay:
			r.League = ""
		}
		switch name := matchLabel(leg); {
		case name != "":
			r.MatchName = name
		case wasParlay:
			r.MatchName = leg.Selection
		}
	}

	if !r.OddsLocked || r.Odds <= 0 {
		odds := make([]float64, n)
		for i, l := range r.Legs {
			odds[i] = l.Odds
		}
		r.Odds = OddsProduct(odds...)
	}
	if r.Odds < 1 {
		r.Odds = 1
	}

	r.Profit = ProfitFor(r.Status, r.Result, r.Stake, r.Odds, r.Fee)
	return r
}

func normalizeLeg(l Leg, r Record, i int) Leg {
	if l.ID == "" {
		l.ID = fmt.Sprintf("%s-%d", r.ID, i+1)
	}
	if l.Odds <= 0 || math.IsNaN(l.Odds) {
		l.Odds = 1
	}
	l.Stake = nonNegative(l.Stake)
	if l.BetType == "" {
		if len(r.Legs) == 1 && r.BetType != "" && !strings.HasPrefix(r.BetType, "parlay(") {
			l.BetType = r.BetType
		} else {
			l.BetType = DefaultBetType
		}
	}
	if len(r.Legs) == 1 && l.Stake == 0 {
		l.Stake = r.Stake
	}
	return l
}

// matchLabel is "home vs away", or whichever team is known.
func matchLabel(l Leg) string {
	home := strings.TrimSpace(l.HomeTeam)
	away := strings.TrimSpace(l.AwayTeam)
	switch {
	case home != "" && away != "":
		return home + " vs " + away
	case home != "":
		return home
	default:
		return away
	}
}

func parlayAnchor(l Leg) string {
	if name := matchLabel(l); name != "" {
		return name
	}
	if l.Selection != "" {
		return l.Selection
	}
	return "parlay"
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
