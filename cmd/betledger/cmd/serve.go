package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/betledger/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger as a JSON API",
	Long: `Serve the ledger over HTTP under /api/v1, with /health and Prometheus
/metrics. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides the config file)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := api.NewServer(a.ledger, a.settings,
		api.WithLogger(a.log),
		api.WithAllowedOrigins(a.cfg.Server.AllowedOrigins),
	)
	return srv.Run(ctx, addr)
}
