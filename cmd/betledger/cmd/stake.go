package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/betledger/risk"
)

var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Recommend a stake for the next wager",
	Long: `Recommend a stake from the current bankroll using fixed ratio and Kelly
sizing, gated by the stop-loss rules.

Kelly sizing needs both --odds and --probability.

Examples:
  betledger stake
  betledger stake --odds 2.1 --probability 0.52`,
	Args: cobra.NoArgs,
	RunE: runStake,
}

var (
	stakeOdds        float64
	stakeProbability float64
	stakeJSON        bool
)

func init() {
	rootCmd.AddCommand(stakeCmd)
	stakeCmd.Flags().Float64Var(&stakeOdds, "odds", 0, "decimal odds of the next wager")
	stakeCmd.Flags().Float64Var(&stakeProbability, "probability", 0, "estimated win probability (0-1)")
	stakeCmd.Flags().BoolVar(&stakeJSON, "json", false, "print JSON")
}

func runStake(cmd *cobra.Command, args []string) error {
	odds := stakeOdds
	if stakeProbability <= 0 {
		odds = 0
	}

	return withApp(cmd, func(a *app) error {
		cfg := a.settings.Current()
		rec := risk.Recommend(risk.InputsFor(a.ledger.Summary(), cfg, odds, stakeProbability))

		out := cmd.OutOrStdout()
		if stakeJSON {
			return printJSON(out, rec)
		}
		fmt.Fprintf(out, "Bankroll:    %.2f\n", rec.Bankroll)
		fmt.Fprintf(out, "Fixed ratio: %.2f (%.1f%%)\n", rec.Fixed, cfg.FixedRatio*100)
		if odds > 1 {
			fmt.Fprintf(out, "Kelly:       %.2f (factor %.2f)\n", rec.Kelly, cfg.KellyFactor)
		}
		fmt.Fprintf(out, "Suggested:   %.2f (%s)\n", rec.Suggested, cfg.RiskTolerance)
		for _, w := range rec.Gate.Warnings() {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		if rec.Gate.ShouldPause {
			fmt.Fprintln(out, "Stop-loss reached: no stake suggested")
		}
		return nil
	})
}
