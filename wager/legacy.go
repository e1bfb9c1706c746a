package wager

// FromLegacy synthesizes the single leg of an older record shape that kept
// the match directly on the wager (homeTeam/awayTeam/league/betType/odds/stake).
// base supplies values the payload leaves out. ok is false when neither
// carries anything a leg could be built from.
func FromLegacy(base Record, p Payload) (Leg, bool) {
	leg := Leg{
		League:  base.League,
		BetType: base.BetType,
		Odds:    base.Odds,
		Stake:   base.Stake,
	}
	setString(&leg.HomeTeam, p.HomeTeam)
	setString(&leg.AwayTeam, p.AwayTeam)
	setString(&leg.League, p.League)
	setString(&leg.BetType, p.BetType)
	setString(&leg.MatchTime, p.MatchTime)
	setString(&leg.Selection, p.Selection)
	if p.Odds != nil {
		leg.Odds = *p.Odds
	}
	if p.Stake != nil {
		leg.Stake = *p.Stake
	}

	if leg == (Leg{}) {
		return Leg{}, false
	}
	return leg, true
}

// Migrate maps one persisted entry, in any historical shape, onto a Record.
//
// Entries written before the lifecycle existed carry no status; a decided
// result means the wager was already settled, anything else is a draft.
func Migrate(p Payload) Record {
	r := Apply(Record{}, p)
	if p.Status == nil || !p.Status.Valid() {
		if r.Result.Decided() {
			r.Status = StatusSettled
		} else {
			r.Status = StatusSaved
		}
	}
	return r
}
