// Package cart collects selections into one ticket and prices it before it
// is committed to the ledger.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/betledger/wager"
)

// DefaultUnitStake is the fixed denomination of one combination.
const DefaultUnitStake = 2.0

const defaultGrouping = 2

var ErrNotCommittable = errors.New("cart cannot be committed")

// Adder is the part of the ledger a cart submits to.
type Adder interface {
	Add(ctx context.Context, p wager.Payload) (wager.Record, error)
}

// Cart is the working set of selections for the next ticket. It is not safe
// for concurrent use.
type Cart struct {
	selections []Selection
	grouping   int
	multiple   int
	unitStake  float64
	now        func() time.Time
}

type Option func(*Cart)

// WithUnitStake overrides DefaultUnitStake.
func WithUnitStake(v float64) Option {
	return func(c *Cart) {
		if v > 0 {
			c.unitStake = v
		}
	}
}

// WithClock replaces time.Now for AddedAt stamps and drafts.
func WithClock(now func() time.Time) Option {
	return func(c *Cart) { c.now = now }
}

func New(opts ...Option) *Cart {
	c := &Cart{grouping: defaultGrouping, multiple: 1, unitStake: DefaultUnitStake, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Toggle deselects s if it is already in the cart, replaces any other pick
// on the same match, or appends it. A pick that goes in is stamped AddedAt.
func (c *Cart) Toggle(s Selection) {
	key := s.Key()
	switch i := c.indexOf(func(x Selection) bool { return x.Key() == key }); {
	case i >= 0:
		c.selections = slices.Delete(c.selections, i, i+1)
	default:
		s.AddedAt = c.now()
		if j := c.indexOf(func(x Selection) bool { return x.MatchID == s.MatchID }); j >= 0 {
			c.selections[j] = s
		} else {
			c.selections = append(c.selections, s)
		}
	}
	c.regroup()
}

func (c *Cart) IsSelected(matchID, playType, selection string) bool {
	key := KeyOf(matchID, playType, selection)
	return c.indexOf(func(x Selection) bool { return x.Key() == key }) >= 0
}

// Remove drops the selection with key and reports whether it was present.
func (c *Cart) Remove(key string) bool {
	i := c.indexOf(func(x Selection) bool { return x.Key() == key })
	if i < 0 {
		return false
	}
	c.selections = slices.Delete(c.selections, i, i+1)
	c.regroup()
	return true
}

// Clear empties the cart and resets the multiple and grouping.
func (c *Cart) Clear() {
	c.selections = nil
	c.multiple = 1
	c.grouping = defaultGrouping
}

// SetGrouping picks how many legs each combination holds, as "M_1".
func (c *Cart) SetGrouping(g string) error {
	m, err := ParseGrouping(g)
	if err != nil {
		return err
	}
	if m > c.Count() {
		return fmt.Errorf("grouping %s needs at least %d selections, have %d", g, m, c.Count())
	}
	c.grouping = m
	return nil
}

func (c *Cart) SetMultiple(n int) error {
	if n < 1 {
		return fmt.Errorf("multiple must be at least 1, got %d", n)
	}
	c.multiple = n
	return nil
}

// ParseGrouping reads the leg count out of an "M_1" grouping.
func ParseGrouping(g string) (int, error) {
	head, tail, ok := strings.Cut(strings.TrimSpace(g), "_")
	if !ok || tail != "1" {
		return 0, fmt.Errorf("grouping %q: want M_1", g)
	}
	m, err := strconv.Atoi(head)
	if err != nil || m < 1 {
		return 0, fmt.Errorf("grouping %q: want M_1 with M >= 1", g)
	}
	return m, nil
}

func (c *Cart) Selections() []Selection { return slices.Clone(c.selections) }
func (c *Cart) Count() int              { return len(c.selections) }
func (c *Cart) Multiple() int           { return c.multiple }
func (c *Cart) UnitStake() float64      { return c.unitStake }
func (c *Cart) Grouping() int           { return c.grouping }

// Mode is parlay once two or more matches are picked.
func (c *Cart) Mode() wager.WagerType {
	if c.Count() >= 2 {
		return wager.Parlay
	}
	return wager.Single
}

// GroupingLabel is "single" or the "M_1" grouping of a parlay.
func (c *Cart) GroupingLabel() string {
	if c.Mode() == wager.Single {
		return string(wager.Single)
	}
	return fmt.Sprintf("%d_1", c.grouping)
}

// StakeCount is the number of combinations on the ticket.
func (c *Cart) StakeCount() int {
	switch {
	case c.Count() == 0:
		return 0
	case c.Mode() == wager.Single:
		return 1
	default:
		return CombinationCount(c.Count(), c.grouping)
	}
}

func (c *Cart) TotalStake() float64 {
	return decimal.NewFromInt(int64(c.StakeCount() * c.multiple)).
		Mul(decimal.NewFromFloat(c.unitStake)).
		InexactFloat64()
}

// AggregateOdds prices the ticket: the leg's odds for a single, the product
// of all odds when every leg is combined, and otherwise the mean product
// over every M-leg combination.
func (c *Cart) AggregateOdds() float64 {
	n := c.Count()
	switch {
	case n == 0:
		return 0
	case n == 1:
		return c.selections[0].Odds
	case c.grouping >= n:
		return wager.OddsProduct(oddsOf(c.selections)...)
	}

	combos := AllCombinations(c.selections, c.grouping)
	if len(combos) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, combo := range combos {
		sum = sum.Add(decimal.NewFromFloat(wager.OddsProduct(oddsOf(combo)...)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(combos)))).InexactFloat64()
}

// ProjectedPayout is TotalStake times AggregateOdds, rounded half away from
// zero to cents on the exact decimal product.
func (c *Cart) ProjectedPayout() float64 {
	if c.Count() == 0 {
		return 0
	}
	return decimal.NewFromFloat(c.TotalStake()).
		Mul(decimal.NewFromFloat(c.AggregateOdds())).
		Round(2).
		InexactFloat64()
}

// AllSupportSingle reports whether every selection may be bet on its own.
func (c *Cart) AllSupportSingle() bool {
	if c.Count() == 0 {
		return false
	}
	for _, s := range c.selections {
		if !s.IsSingle {
			return false
		}
	}
	return true
}

// CanCommit reports whether the cart can become a wager, and why not.
func (c *Cart) CanCommit() (bool, string) {
	switch {
	case c.Count() == 0:
		return false, "no selections"
	case c.Mode() == wager.Single && !c.AllSupportSingle():
		return false, "selection cannot be bet as a single, add more matches for a parlay"
	}
	return true, ""
}

// Draft builds the ledger payload for the current cart as a saved, pending
// wager placed at now.
func (c *Cart) Draft(now time.Time) (wager.Payload, error) {
	if ok, reason := c.CanCommit(); !ok {
		return wager.Payload{}, fmt.Errorf("%w: %s", ErrNotCommittable, reason)
	}

	legs := make([]wager.Leg, 0, c.Count())
	for _, s := range c.selections {
		legs = append(legs, s.Leg())
	}

	p := wager.Payload{
		Stake:   wager.Ptr(c.TotalStake()),
		Status:  wager.Ptr(wager.StatusSaved),
		Result:  wager.Ptr(wager.ResultPending),
		BetTime: wager.Ptr(wager.NewBetTime(now)),
		Legs:    legs,
	}
	// A partial grouping is priced by its average, which the legs alone
	// cannot reproduce.
	if c.Mode() == wager.Parlay && c.grouping < c.Count() {
		p.Odds = wager.Ptr(wager.Round2(c.AggregateOdds()))
	}
	return p, nil
}

// Submit adds the draft to the ledger with the given status and empties the
// cart once the ledger accepts it. A rejected submit leaves the cart as it was.
func (c *Cart) Submit(ctx context.Context, to Adder, status wager.Status) (wager.Record, error) {
	p, err := c.Draft(c.now())
	if err != nil {
		return wager.Record{}, err
	}
	if status != "" {
		p.Status = wager.Ptr(status)
	}

	rec, err := to.Add(ctx, p)
	if err != nil {
		return wager.Record{}, fmt.Errorf("submit cart: %w", err)
	}
	c.Clear()
	return rec, nil
}

// Preview is the priced state of the cart.
type Preview struct {
	Selections      []Selection     `json:"selections"`
	Count           int             `json:"count"`
	Mode            wager.WagerType `json:"mode"`
	Grouping        string          `json:"grouping"`
	Multiple        int             `json:"multiple"`
	StakeCount      int             `json:"stakeCount"`
	TotalStake      float64         `json:"totalStake"`
	AggregateOdds   float64         `json:"aggregateOdds"`
	ProjectedPayout float64         `json:"projectedPayout"`
	CanCommit       bool            `json:"canCommit"`
	Reason          string          `json:"reason,omitempty"`
}

func (c *Cart) Preview() Preview {
	ok, reason := c.CanCommit()
	return Preview{
		Selections:      c.Selections(),
		Count:           c.Count(),
		Mode:            c.Mode(),
		Grouping:        c.GroupingLabel(),
		Multiple:        c.multiple,
		StakeCount:      c.StakeCount(),
		TotalStake:      c.TotalStake(),
		AggregateOdds:   c.AggregateOdds(),
		ProjectedPayout: c.ProjectedPayout(),
		CanCommit:       ok,
		Reason:          reason,
	}
}

func (c *Cart) indexOf(match func(Selection) bool) int {
	return slices.IndexFunc(c.selections, match)
}

func (c *Cart) regroup() {
	if n := c.Count(); n >= 2 {
		c.grouping = n
	}
}

func oddsOf(s []Selection) []float64 {
	out := make([]float64, len(s))
	for i, x := range s {
		out[i] = x.Odds
	}
	return out
}
