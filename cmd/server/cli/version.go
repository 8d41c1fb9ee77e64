package cli

import (
	"fmt"

	"shieldboard/internal/delivery"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of shieldboard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shieldboard %s\n", delivery.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
