// Package journal exports the ledger for spreadsheets and Org-mode notes.
package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rustyeddy/betledger/analytics"
	"github.com/rustyeddy/betledger/wager"
)

var wagerHeader = []string{
	"id", "bet_time", "match", "league", "bet_type", "wager_type", "legs",
	"stake", "odds", "fee", "status", "result", "profit", "platform", "tags", "note",
}

var trendHeader = []string{"date", "stake", "profit", "balance"}

// WriteCSV writes one row per record, in the order given.
func WriteCSV(w io.Writer, records []wager.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(wagerHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.BetTime.String(),
			r.MatchName,
			r.League,
			r.BetType,
			string(r.WagerType),
			strconv.Itoa(len(r.Legs)),
			money(r.Stake),
			f(r.Odds),
			money(r.Fee),
			string(r.Status),
			string(r.Result),
			money(r.Profit),
			r.Platform,
			strings.Join(r.Tags, ";"),
			r.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTrendCSV writes the daily balance curve.
func WriteTrendCSV(w io.Writer, trend []analytics.TrendPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trendHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range trend {
		if err := cw.Write([]string{p.Date, money(p.Stake), money(p.Profit), money(p.Balance)}); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(x float64) string {
	return strconv.FormatFloat(wager.Round2(x), 'f', 2, 64)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
