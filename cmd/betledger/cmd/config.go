package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/betledger/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file and risk parameters",
	Long: `Manage configuration files and the persisted risk parameters.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file
  show     - Print the effective risk parameters
  set      - Change and persist risk parameters

Examples:
  betledger config init -o betledger.yaml
  betledger config validate -f betledger.yaml
  betledger config set --starting-capital 5000 --kelly-factor 0.25`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective risk parameters",
	Long: `Print the risk parameters in effect: the config file values with the
persisted snapshot laid over them.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change and persist risk parameters",
	Args:  cobra.NoArgs,
	RunE:  runConfigSet,
}

var (
	configInitOutput   string
	configValidatePath string

	setStartingCapital float64
	setFixedRatio      float64
	setKellyFactor     float64
	setStopLossLimit   int
	setTargetReturn    float64
	setTheme           string
	setRiskTolerance   string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "betledger.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")

	f := configSetCmd.Flags()
	f.Float64Var(&setStartingCapital, "starting-capital", 0, "starting capital")
	f.Float64Var(&setFixedRatio, "fixed-ratio", 0, "fraction of the bankroll staked by fixed ratio sizing")
	f.Float64Var(&setKellyFactor, "kelly-factor", 0, "Kelly adjustment factor (0.5 is half Kelly)")
	f.IntVar(&setStopLossLimit, "stop-loss-limit", 0, "consecutive losses before pausing")
	f.Float64Var(&setTargetReturn, "target-monthly-return", 0, "monthly return target as a fraction")
	f.StringVar(&setTheme, "theme", "", "light or dark")
	f.StringVar(&setRiskTolerance, "risk-tolerance", "", "conservative, balanced or aggressive")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  betledger --config %s stats\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Capital: %.2f (fixed ratio %.1f%%, Kelly factor %.2f)\n",
		cfg.Risk.StartingCapital, cfg.Risk.FixedRatio*100, cfg.Risk.KellyFactor)
	fmt.Fprintf(out, "  Storage: %s\n", cfg.Storage.Driver)
	fmt.Fprintf(out, "  Server: %s\n", cfg.Server.Addr)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		data, err := yaml.Marshal(a.settings.Current())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	})
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	var p config.Patch
	if f.Changed("starting-capital") {
		p.StartingCapital = &setStartingCapital
	}
	if f.Changed("fixed-ratio") {
		p.FixedRatio = &setFixedRatio
	}
	if f.Changed("kelly-factor") {
		p.KellyFactor = &setKellyFactor
	}
	if f.Changed("stop-loss-limit") {
		p.StopLossLimit = &setStopLossLimit
	}
	if f.Changed("target-monthly-return") {
		p.TargetMonthlyReturn = &setTargetReturn
	}
	if f.Changed("theme") {
		p.Theme = &setTheme
	}
	if f.Changed("risk-tolerance") {
		p.RiskTolerance = &setRiskTolerance
	}

	return withApp(cmd, func(a *app) error {
		cfg, err := a.settings.Update(cmd.Context(), p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Risk parameters saved (capital %.2f, tolerance %s)\n",
			cfg.StartingCapital, cfg.RiskTolerance)
		return nil
	})
}
