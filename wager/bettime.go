package wager

import (
	"encoding/json"
	"strings"
	"time"
)

// DisplayLayout is the minute-resolution layout used in listings and exports.
const DisplayLayout = "2006-01-02 15:04"

// DayLayout keys daily snapshots.
const DayLayout = "2006-01-02"

var betTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	DisplayLayout,
	"2006-01-02T15:04",
	DayLayout,
}

// BetTime is when a wager was placed. It decodes the RFC3339 form written by
// this package as well as the "YYYY-MM-DD HH:mm" strings found in older ledgers.
type BetTime struct {
	time.Time
}

// NewBetTime wraps t, truncated to the second.
func NewBetTime(t time.Time) BetTime {
	return BetTime{Time: t.Truncate(time.Second)}
}

// ParseBetTime accepts any of the supported layouts. Layouts without a zone
// are read in local time.
func ParseBetTime(s string) (BetTime, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range betTimeLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return BetTime{Time: t}, nil
		}
		lastErr = err
	}
	return BetTime{}, lastErr
}

// Day returns the calendar day key of the bet in its own location.
func (b BetTime) Day() string {
	return b.Format(DayLayout)
}

func (b BetTime) String() string {
	if b.IsZero() {
		return ""
	}
	return b.Format(DisplayLayout)
}

func (b BetTime) MarshalJSON() ([]byte, error) {
	if b.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(b.Format(time.RFC3339))
}

// UnmarshalJSON never fails on an unreadable timestamp: it leaves the value
// zero so normalization can default it.
func (b *BetTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			*b = BetTime{}
			return nil
		}
		// epoch milliseconds
		*b = BetTime{Time: time.UnixMilli(n)}
		return nil
	}
	if s == "" {
		*b = BetTime{}
		return nil
	}
	parsed, err := ParseBetTime(s)
	if err != nil {
		*b = BetTime{}
		return nil
	}
	*b = parsed
	return nil
}
