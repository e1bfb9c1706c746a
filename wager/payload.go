package wager

import "slices"

// Payload is the loosely shaped input accepted by the ledger for add and
// update. Nil fields are "not supplied". WagerType and Profit are accepted
// for compatibility but always re-derived.
//
// HomeTeam, AwayTeam, MatchTime and Selection are the top-level fields of
// the older single-leg shape; see FromLegacy.
type Payload struct {
	ID         *string  `json:"id,omitempty"`
	MatchName  *string  `json:"matchName,omitempty"`
	League     *string  `json:"league,omitempty"`
	BetType    *string  `json:"betType,omitempty"`
	Stake      *float64 `json:"stake,omitempty"`
	Odds       *float64 `json:"odds,omitempty"`
	OddsLocked *bool    `json:"oddsLocked,omitempty"`
	Platform   *string  `json:"platform,omitempty"`
	Result     *Result  `json:"result,omitempty"`
	Status     *Status  `json:"status,omitempty"`
	Fee        *float64 `json:"fee,omitempty"`
	BetTime    *BetTime `json:"betTime,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Note       *string  `json:"note,omitempty"`
	Legs       []Leg    `json:"legs,omitempty"`

	HomeTeam  *string `json:"homeTeam,omitempty"`
	AwayTeam  *string `json:"awayTeam,omitempty"`
	MatchTime *string `json:"matchTime,omitempty"`
	Selection *string `json:"selection,omitempty"`

	WagerType *WagerType `json:"wagerType,omitempty"`
	Profit    *float64   `json:"profit,omitempty"`
}

// Ptr is a small helper for building payloads in code.
func Ptr[T any](v T) *T { return &v }

// Apply merges p over base. It does not normalize: derived fields are left
// for Normalize to recompute.
func Apply(base Record, p Payload) Record {
	r := base.Clone()

	setString(&r.ID, p.ID)
	setString(&r.MatchName, p.MatchName)
	setString(&r.League, p.League)
	setString(&r.BetType, p.BetType)
	setString(&r.Platform, p.Platform)
	setString(&r.Note, p.Note)

	if p.Stake != nil {
		r.Stake = *p.Stake
	}
	if p.Fee != nil {
		r.Fee = *p.Fee
	}
	if p.Result != nil {
		r.Result = *p.Result
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.BetTime != nil {
		r.BetTime = *p.BetTime
	}
	if p.Tags != nil {
		r.Tags = slices.Clone(p.Tags)
	}

	switch {
	case p.Legs != nil:
		r.Legs = Record{Legs: p.Legs}.Clone().Legs
		if p.Odds == nil {
			r.OddsLocked = false
		}
	case len(r.Legs) == 0:
		if leg, ok := FromLegacy(r, p); ok {
			r.Legs = []Leg{leg}
		}
	}

	if p.Odds != nil {
		r.Odds = *p.Odds
		r.OddsLocked = true
	}
	if p.OddsLocked != nil {
		r.OddsLocked = *p.OddsLocked
	}

	return r
}

// LegsChanged reports whether applying p would replace the legs.
func (p Payload) LegsChanged() bool {
	return p.Legs != nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
