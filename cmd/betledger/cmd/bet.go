package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/betledger/ledger"
	"github.com/rustyeddy/betledger/wager"
)

var betCmd = &cobra.Command{
	Use:   "bet",
	Short: "Record, update and settle wagers",
	Long: `Work with the wager ledger.

Examples:
  betledger bet add --stake 20 --odds 1.85 --home Arsenal --away Chelsea --selection home
  betledger bet add --stake 10 --leg "Arsenal,Chelsea,1.85,home" --leg "Inter,Milan,2.10,draw"
  betledger bet list --status betting
  betledger bet settle 01HZ... win`,
}

var betAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a wager",
	Args:  cobra.NoArgs,
	RunE:  runBetAdd,
}

var betListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wagers, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runBetList,
}

var betShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one wager as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runBetShow,
}

var betUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a wager",
	Long:  `Update a wager. Only the flags given on the command line are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runBetUpdate,
}

var betSettleCmd = &cobra.Command{
	Use:   "settle <id> <result>",
	Short: "Settle a wager as win, lose, half-win or half-lose",
	Args:  cobra.ExactArgs(2),
	RunE:  runBetSettle,
}

var betRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a wager",
	Args:  cobra.ExactArgs(1),
	RunE:  runBetRemove,
}

var betClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every wager",
	Args:  cobra.NoArgs,
	RunE:  runBetClear,
}

// betFlags backs the add and update flag sets.
type betFlags struct {
	matchName string
	league    string
	betType   string
	stake     float64
	odds      float64
	platform  string
	status    string
	result    string
	fee       float64
	betTime   string
	tags      []string
	note      string
	legs      []string

	home      string
	away      string
	matchTime string
	selection string
}

var (
	addFlags    betFlags
	updateFlags betFlags

	listStatus string
	listResult string
	listTag    string
	listJSON   bool

	clearYes bool
)

func init() {
	rootCmd.AddCommand(betCmd)
	betCmd.AddCommand(betAddCmd, betListCmd, betShowCmd, betUpdateCmd, betSettleCmd, betRemoveCmd, betClearCmd)

	addFlags.bind(betAddCmd)
	updateFlags.bind(betUpdateCmd)

	betListCmd.Flags().StringVar(&listStatus, "status", "", "only wagers with this status")
	betListCmd.Flags().StringVar(&listResult, "result", "", "only wagers with this result")
	betListCmd.Flags().StringVar(&listTag, "tag", "", "only wagers carrying this tag")
	betListCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")

	betClearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm removing every wager")
}

func (b *betFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&b.matchName, "match", "", "match name")
	f.StringVar(&b.league, "league", "", "league")
	f.StringVar(&b.betType, "bet-type", "", "bet type")
	f.Float64Var(&b.stake, "stake", 0, "stake")
	f.Float64Var(&b.odds, "odds", 0, "decimal odds (locks the odds against the legs)")
	f.StringVar(&b.platform, "platform", "", "where the wager was placed")
	f.StringVar(&b.status, "status", "", "saved, betting or settled")
	f.StringVar(&b.result, "result", "", "pending, win, lose, half-win or half-lose")
	f.Float64Var(&b.fee, "fee", 0, "fee")
	f.StringVar(&b.betTime, "time", "", `bet time, "2006-01-02 15:04" or RFC3339`)
	f.StringSliceVar(&b.tags, "tag", nil, "tags (repeatable)")
	f.StringVar(&b.note, "note", "", "note")
	f.StringArrayVar(&b.legs, "leg", nil, `leg as "home,away,odds[,selection[,bet type]]" (repeatable)`)

	f.StringVar(&b.home, "home", "", "home team of a single wager")
	f.StringVar(&b.away, "away", "", "away team of a single wager")
	f.StringVar(&b.matchTime, "match-time", "", "kickoff of a single wager")
	f.StringVar(&b.selection, "selection", "", "selection of a single wager")
}

// payload turns the flags the user set into a wager payload.
func (b *betFlags) payload(cmd *cobra.Command) (wager.Payload, error) {
	f := cmd.Flags()
	var p wager.Payload

	str := func(name, v string) *string {
		if f.Changed(name) {
			return wager.Ptr(v)
		}
		return nil
	}
	num := func(name string, v float64) *float64 {
		if f.Changed(name) {
			return wager.Ptr(v)
		}
		return nil
	}

	p.MatchName = str("match", b.matchName)
	p.League = str("league", b.league)
	p.BetType = str("bet-type", b.betType)
	p.Platform = str("platform", b.platform)
	p.Note = str("note", b.note)
	p.HomeTeam = str("home", b.home)
	p.AwayTeam = str("away", b.away)
	p.MatchTime = str("match-time", b.matchTime)
	p.Selection = str("selection", b.selection)
	p.Stake = num("stake", b.stake)
	p.Fee = num("fee", b.fee)

	if f.Changed("odds") {
		p.Odds = wager.Ptr(b.odds)
		p.OddsLocked = wager.Ptr(true)
	}
	if f.Changed("status") {
		p.Status = wager.Ptr(wager.Status(b.status))
	}
	if f.Changed("result") {
		p.Result = wager.Ptr(wager.Result(b.result))
	}
	if f.Changed("time") {
		t, err := wager.ParseBetTime(b.betTime)
		if err != nil {
			return p, fmt.Errorf("--time: %w", err)
		}
		p.BetTime = &t
	}
	if f.Changed("tag") {
		p.Tags = b.tags
	}
	for _, s := range b.legs {
		leg, err := parseLeg(s)
		if err != nil {
			return p, err
		}
		p.Legs = append(p.Legs, leg)
	}
	return p, nil
}

// parseLeg reads "home,away,odds[,selection[,bet type]]".
func parseLeg(s string) (wager.Leg, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 3 || len(parts) > 5 {
		return wager.Leg{}, fmt.Errorf("leg %q: want home,away,odds[,selection[,bet type]]", s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	odds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return wager.Leg{}, fmt.Errorf("leg %q: odds: %w", s, err)
	}
	leg := wager.Leg{HomeTeam: parts[0], AwayTeam: parts[1], Odds: odds}
	if len(parts) > 3 {
		leg.Selection = parts[3]
	}
	if len(parts) > 4 {
		leg.BetType = parts[4]
	}
	return leg, nil
}

func runBetAdd(cmd *cobra.Command, args []string) error {
	p, err := addFlags.payload(cmd)
	if err != nil {
		return err
	}
	return withApp(cmd, func(a *app) error {
		rec, err := a.ledger.Add(cmd.Context(), p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s: %s stake %.2f @ %.2f (%s)\n",
			rec.ID, rec.MatchName, rec.Stake, rec.Odds, rec.Status)
		return nil
	})
}

func runBetList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		records := a.ledger.Find(ledger.Filter{
			Status: wager.Status(listStatus),
			Result: wager.Result(listResult),
			Tag:    listTag,
		})
		if listJSON {
			return printJSON(cmd.OutOrStdout(), records)
		}
		return printRecords(cmd.OutOrStdout(), records)
	})
}

func runBetShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		rec, err := a.ledger.Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), rec)
	})
}

func runBetUpdate(cmd *cobra.Command, args []string) error {
	p, err := updateFlags.payload(cmd)
	if err != nil {
		return err
	}
	return withApp(cmd, func(a *app) error {
		rec, err := a.ledger.Update(cmd.Context(), args[0], p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s: %s stake %.2f @ %.2f (%s/%s)\n",
			rec.ID, rec.MatchName, rec.Stake, rec.Odds, rec.Status, rec.Result)
		return nil
	})
}

func runBetSettle(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		rec, err := a.ledger.Settle(cmd.Context(), args[0], wager.Result(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Settled %s as %s, profit %.2f, bankroll %.2f\n",
			rec.ID, rec.Result, rec.Profit, a.ledger.Bankroll())
		return nil
	})
}

func runBetRemove(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		if err := a.ledger.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", args[0])
		return nil
	})
}

func runBetClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		return fmt.Errorf("refusing to clear the ledger without --yes")
	}
	return withApp(cmd, func(a *app) error {
		n := a.ledger.Len()
		if err := a.ledger.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d wagers\n", n)
		return nil
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecords(w io.Writer, records []wager.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tMATCH\tTYPE\tSTAKE\tODDS\tSTATUS\tRESULT\tPROFIT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%s\t%s\t%.2f\n",
			r.ID, r.BetTime, r.MatchName, r.WagerType, r.Stake, r.Odds, r.Status, r.Result, r.Profit)
	}
	return tw.Flush()
}
