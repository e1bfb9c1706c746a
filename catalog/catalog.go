// Package catalog is the shape of the match and odds listings the cart picks
// selections from. Fetching and paging listings is somebody else's job; this
// package only reads a snapshot of them.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option is one priced outcome of a play.
type Option struct {
	Value string  `json:"value" yaml:"value"`
	Label string  `json:"label" yaml:"label"`
	Odds  float64 `json:"odds" yaml:"odds"`
}

// Play is one market offered on a match, e.g. "had" (win-draw-lose).
type Play struct {
	Type     string   `json:"type" yaml:"type"`
	Name     string   `json:"name" yaml:"name"`
	Handicap *float64 `json:"handicap,omitempty" yaml:"handicap,omitempty"`
	Options  []Option `json:"options" yaml:"options"`
}

// Match is a fixture with its plays.
type Match struct {
	ID        string `json:"matchId" yaml:"match_id"`
	League    string `json:"league" yaml:"league"`
	MatchDate string `json:"matchDate" yaml:"match_date"`
	MatchTime string `json:"matchTime" yaml:"match_time"`
	HomeTeam  string `json:"homeTeam" yaml:"home_team"`
	AwayTeam  string `json:"awayTeam" yaml:"away_team"`
	IsSingle  bool   `json:"isSingle" yaml:"is_single"`
	Plays     []Play `json:"plays" yaml:"plays"`
}

// Catalog is a snapshot of listed matches.
type Catalog struct {
	Matches []Match `json:"matches" yaml:"matches"`
}

// LoadFile reads a catalog snapshot. Files ending in .json are decoded as
// JSON, everything else as YAML.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &c)
	} else {
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &c, nil
}

// Find looks up a match by id.
func (c *Catalog) Find(matchID string) (Match, bool) {
	for _, m := range c.Matches {
		if m.ID == matchID {
			return m, true
		}
	}
	return Match{}, false
}

// Play looks up a play by type.
func (m Match) Play(playType string) (Play, bool) {
	for _, p := range m.Plays {
		if p.Type == playType {
			return p, true
		}
	}
	return Play{}, false
}

// Option looks up an option by value.
func (p Play) Option(value string) (Option, bool) {
	for _, o := range p.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// Lookup resolves match, play and option in one go.
func (c *Catalog) Lookup(matchID, playType, value string) (Match, Play, Option, error) {
	m, ok := c.Find(matchID)
	if !ok {
		return Match{}, Play{}, Option{}, fmt.Errorf("match %q not in catalog", matchID)
	}
	p, ok := m.Play(playType)
	if !ok {
		return Match{}, Play{}, Option{}, fmt.Errorf("match %q has no play %q", matchID, playType)
	}
	o, ok := p.Option(value)
	if !ok {
		return Match{}, Play{}, Option{}, fmt.Errorf("play %q of match %q has no option %q", playType, matchID, value)
	}
	return m, p, o, nil
}
