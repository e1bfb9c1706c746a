package cart

import (
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/betledger/catalog"
	"github.com/rustyeddy/betledger/wager"
)

// Selection is one priced outcome picked from the catalog.
type Selection struct {
	MatchID        string   `json:"matchId"`
	HomeTeam       string   `json:"homeTeam"`
	AwayTeam       string   `json:"awayTeam"`
	League         string   `json:"league"`
	MatchDate      string   `json:"matchDate"`
	MatchTime      string   `json:"matchTime"`
	PlayType       string   `json:"playType"`
	PlayName       string   `json:"playName"`
	Selection      string   `json:"selection"`
	SelectionLabel string   `json:"selectionLabel"`
	Odds           float64  `json:"odds"`
	Handicap       *float64 `json:"handicap,omitempty"`
	IsSingle       bool     `json:"isSingle"`

	// AddedAt is stamped by Cart.Toggle.
	AddedAt time.Time `json:"addedAt"`
}

// KeyOf builds the canonical selection key.
func KeyOf(matchID, playType, selection string) string {
	return matchID + "|" + playType + "|" + selection
}

func (s Selection) Key() string {
	return KeyOf(s.MatchID, s.PlayType, s.Selection)
}

// SelectionFrom turns a catalog entry into a Selection.
func SelectionFrom(m catalog.Match, p catalog.Play, o catalog.Option) Selection {
	s := Selection{
		MatchID:        m.ID,
		HomeTeam:       m.HomeTeam,
		AwayTeam:       m.AwayTeam,
		League:         m.League,
		MatchDate:      m.MatchDate,
		MatchTime:      m.MatchTime,
		PlayType:       p.Type,
		PlayName:       p.Name,
		Selection:      o.Value,
		SelectionLabel: o.Label,
		Odds:           o.Odds,
		IsSingle:       m.IsSingle,
	}
	if p.Handicap != nil {
		h := *p.Handicap
		s.Handicap = &h
	}
	return s
}

// Leg converts the selection into a wager leg keyed by the selection key.
func (s Selection) Leg() wager.Leg {
	l := wager.Leg{
		ID:        s.Key(),
		HomeTeam:  s.HomeTeam,
		AwayTeam:  s.AwayTeam,
		League:    s.League,
		MatchTime: strings.TrimSpace(s.MatchDate + " " + s.MatchTime),
		BetType:   s.PlayName,
		Odds:      s.Odds,
		Selection: s.SelectionLabel,
		Note:      s.PlayName,
	}
	if l.Selection == "" {
		l.Selection = s.Selection
	}
	if s.Handicap != nil {
		h := *s.Handicap
		l.Handicap = &h
		if h != 0 {
			sign := ""
			if h > 0 {
				sign = "+"
			}
			l.Note = s.PlayName + " (" + sign + strconv.FormatFloat(h, 'f', -1, 64) + ")"
		}
	}
	return l
}
