package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the betledger CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "betledger version %s\n", version)
		fmt.Fprintln(out, "A wager ledger with bankroll analytics and stake sizing")
		fmt.Fprintln(out, "https://github.com/rustyeddy/betledger")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
