package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "housingctl version %s (built %s, commit %s)\n", version, buildTime, gitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
