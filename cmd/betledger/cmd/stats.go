package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/betledger/analytics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show bankroll and performance figures",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var statsJSON bool

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the full summary as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		s := a.ledger.Summary()
		if statsJSON {
			return printJSON(cmd.OutOrStdout(), s)
		}
		printSummary(cmd.OutOrStdout(), s)
		return nil
	})
}

func printSummary(w io.Writer, s analytics.Summary) {
	fmt.Fprintf(w, "Wagers:        %d (%d active, %d settled)\n", s.Count, s.ActiveCount, s.SettledCount)
	fmt.Fprintf(w, "Record:        %d won, %d lost, win rate %.1f%%\n", s.WinCount, s.LoseCount, s.WinningRate*100)
	fmt.Fprintf(w, "Bankroll:      %.2f (balance %.2f)\n", s.Bankroll, s.Balance)
	fmt.Fprintf(w, "Staked:        %.2f total, %.2f active\n", s.TotalStake, s.ActiveStake)
	fmt.Fprintf(w, "Profit:        %.2f (ROI %.1f%%)\n", s.TotalProfit, s.ROI*100)
	fmt.Fprintf(w, "Averages:      stake %.2f, odds %.2f\n", s.AverageStake, s.AverageOdds)
	fmt.Fprintf(w, "Losing streak: %d (longest %d)\n", s.ConsecutiveLosses, s.MaxConsecutiveLosses)
	fmt.Fprintf(w, "Drawdown:      %.2f%%\n", s.Drawdown*100)
	fmt.Fprintf(w, "Target:        %.1f%%\n", s.TargetProgress*100)

	if len(s.ProfitByBetType) == 0 {
		return
	}
	fmt.Fprintln(w, "\nProfit by bet type:")
	for _, k := range slices.Sorted(maps.Keys(s.ProfitByBetType)) {
		fmt.Fprintf(w, "  %-16s %10.2f\n", k, s.ProfitByBetType[k])
	}
}
