package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/betledger/journal"
	"github.com/rustyeddy/betledger/ledger"
	"github.com/rustyeddy/betledger/wager"
)

var exportCmd = &cobra.Command{
	Use:   "export <csv|org|trend>",
	Short: "Export the ledger",
	Long: `Export the ledger.

Formats:
  csv   - one row per wager
  org   - Org-mode entries with legs and a review section
  trend - daily stake, profit and running balance as CSV

Examples:
  betledger export csv -o wagers.csv
  betledger export org --status settled > review.org`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"csv", "org", "trend"},
	RunE:      runExport,
}

var (
	exportOutput string
	exportStatus string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "output file (- for stdout)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only wagers with this status (csv and org)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := args[0]
	switch format {
	case "csv", "org", "trend":
	default:
		return fmt.Errorf("unknown export format %q (want csv, org or trend)", format)
	}

	return withApp(cmd, func(a *app) error {
		var w io.Writer = cmd.OutOrStdout()
		if exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		records := a.ledger.Find(ledger.Filter{Status: wager.Status(exportStatus)})

		switch format {
		case "csv":
			return journal.WriteCSV(w, records)
		case "org":
			_, err := io.WriteString(w, journal.FormatWagersOrg(records))
			return err
		default:
			return journal.WriteTrendCSV(w, a.ledger.Trend())
		}
	})
}
