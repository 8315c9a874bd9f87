package cli

import (
	"github.com/spf13/cobra"

	"github.com/wvtest/wvrun/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wvrun build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
