package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/betledger/cart"
	"github.com/rustyeddy/betledger/catalog"
	"github.com/rustyeddy/betledger/wager"
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Price a ticket from a match catalog and optionally record it",
	Long: `Build a ticket from selections in a match catalog, price it, and
optionally submit it to the ledger.

Each --pick is matchId:playType:value. With more than one pick the ticket
is a parlay; --grouping M_1 splits it into every M-leg combination.

Examples:
  betledger ticket --catalog matches.yaml --pick 1001:had:h --pick 1002:hhad:a
  betledger ticket --catalog matches.yaml --pick 1001:had:h --pick 1002:had:d \
      --pick 1003:had:a --grouping 2_1 --multiple 3 --submit --status betting`,
	Args: cobra.NoArgs,
	RunE: runTicket,
}

var (
	ticketCatalog   string
	ticketPicks     []string
	ticketGrouping  string
	ticketMultiple  int
	ticketUnitStake float64
	ticketSubmit    bool
	ticketStatus    string
	ticketJSON      bool
)

func init() {
	rootCmd.AddCommand(ticketCmd)

	f := ticketCmd.Flags()
	f.StringVar(&ticketCatalog, "catalog", "", "match catalog file, YAML or JSON (required)")
	f.StringArrayVar(&ticketPicks, "pick", nil, "selection as matchId:playType:value (repeatable)")
	f.StringVar(&ticketGrouping, "grouping", "", "combination size as M_1 (default: all legs)")
	f.IntVar(&ticketMultiple, "multiple", 1, "stake multiple")
	f.Float64Var(&ticketUnitStake, "unit-stake", cart.DefaultUnitStake, "stake per combination at multiple 1")
	f.BoolVar(&ticketSubmit, "submit", false, "record the ticket in the ledger")
	f.StringVar(&ticketStatus, "status", string(wager.StatusSaved), "status of the recorded wager")
	f.BoolVar(&ticketJSON, "json", false, "print the preview as JSON")
	ticketCmd.MarkFlagRequired("catalog")
}

func runTicket(cmd *cobra.Command, args []string) error {
	cat, err := catalog.LoadFile(ticketCatalog)
	if err != nil {
		return err
	}

	c := cart.New(cart.WithUnitStake(ticketUnitStake))
	for _, pick := range ticketPicks {
		parts := strings.SplitN(pick, ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("pick %q: want matchId:playType:value", pick)
		}
		m, p, o, err := cat.Lookup(parts[0], parts[1], parts[2])
		if err != nil {
			return err
		}
		c.Toggle(cart.SelectionFrom(m, p, o))
	}
	if ticketGrouping != "" {
		if err := c.SetGrouping(ticketGrouping); err != nil {
			return err
		}
	}
	if err := c.SetMultiple(ticketMultiple); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	preview := c.Preview()
	if ticketJSON {
		if err := printJSON(out, preview); err != nil {
			return err
		}
	} else if err := printPreview(out, preview); err != nil {
		return err
	}

	if !ticketSubmit {
		return nil
	}
	return withApp(cmd, func(a *app) error {
		rec, err := c.Submit(cmd.Context(), a.ledger, wager.Status(ticketStatus))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Recorded %s as %s (stake %.2f @ %.2f)\n", rec.ID, rec.Status, rec.Stake, rec.Odds)
		return nil
	})
}

func printPreview(w io.Writer, p cart.Preview) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCH\tPLAY\tPICK\tODDS")
	for _, s := range p.Selections {
		fmt.Fprintf(tw, "%s vs %s\t%s\t%s\t%.2f\n", s.HomeTeam, s.AwayTeam, s.PlayName, s.SelectionLabel, s.Odds)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s %s x%d: %d stakes, total %.2f\n", p.Mode, p.Grouping, p.Multiple, p.StakeCount, p.TotalStake)
	fmt.Fprintf(w, "Odds %.2f, projected payout %.2f\n", p.AggregateOdds, p.ProjectedPayout)
	if !p.CanCommit {
		fmt.Fprintf(w, "Cannot record: %s\n", p.Reason)
	}
	return nil
}
