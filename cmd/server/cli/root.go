package cli

import (
	"fmt"

	"shieldboard/pkg/config"

	"github.com/spf13/cobra"
)

var (
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shieldboard",
	Short: "Shieldboard: investor analytics dashboard",
	Long: `Shieldboard polls the dashboard backend, derives display metrics and
serves them as an HTML dashboard and a JSON API. It also proxies
/api/dashboard to the configured backend origin.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
