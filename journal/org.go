package journal

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/betledger/wager"
)

// FormatWagerOrg renders a record as an Org-mode entry. Structured facts go
// in the PROPERTIES drawer, each leg becomes a list item, and a Review
// heading is left for notes.
func FormatWagerOrg(r wager.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s (%s)\n", orgKeyword(r), r.MatchName, shortID(r.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", r.ID)
	fmt.Fprintf(&b, ":BET_TIME: %s\n", r.BetTime.String())
	fmt.Fprintf(&b, ":LEAGUE: %s\n", r.League)
	fmt.Fprintf(&b, ":BET_TYPE: %s\n", r.BetType)
	fmt.Fprintf(&b, ":WAGER_TYPE: %s\n", r.WagerType)
	fmt.Fprintf(&b, ":STAKE: %s\n", money(r.Stake))
	fmt.Fprintf(&b, ":ODDS: %s\n", f(r.Odds))
	fmt.Fprintf(&b, ":FEE: %s\n", money(r.Fee))
	fmt.Fprintf(&b, ":STATUS: %s\n", r.Status)
	fmt.Fprintf(&b, ":RESULT: %s\n", r.Result)
	fmt.Fprintf(&b, ":PROFIT: %s\n", money(r.Profit))
	if r.Platform != "" {
		fmt.Fprintf(&b, ":PLATFORM: %s\n", r.Platform)
	}
	b.WriteString(":END:\n\n")

	b.WriteString("*** Legs\n")
	for _, l := range r.Legs {
		fmt.Fprintf(&b, "- %s: %s @ %s", legLabel(l), l.Selection, f(l.Odds))
		if l.Note != "" && l.Note != l.BetType {
			fmt.Fprintf(&b, " (%s)", l.Note)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n*** Review\n")
	if r.Note != "" {
		fmt.Fprintf(&b, "- %s\n", r.Note)
	} else {
		b.WriteString("- \n")
	}
	return b.String()
}

// FormatWagersOrg renders multiple records separated by blank lines.
func FormatWagersOrg(records []wager.Record) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatWagerOrg(r))
	}
	return b.String()
}

// orgKeyword maps the lifecycle onto Org TODO keywords.
func orgKeyword(r wager.Record) string {
	switch r.Status {
	case wager.StatusSettled:
		return "DONE"
	case wager.StatusBetting:
		return "WAIT"
	default:
		return "TODO"
	}
}

func legLabel(l wager.Leg) string {
	switch {
	case l.HomeTeam != "" && l.AwayTeam != "":
		return l.HomeTeam + " vs " + l.AwayTeam
	case l.HomeTeam != "":
		return l.HomeTeam
	case l.AwayTeam != "":
		return l.AwayTeam
	default:
		return l.BetType
	}
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
