package commands

import (
	"github.com/spf13/cobra"

	"github.com/yok-tottii/typo/internal/config"
	"github.com/yok-tottii/typo/internal/printer"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printer.Info("typo %s\n", version)
		printer.Info("  commit:         %s\n", commit)
		printer.Info("  built:          %s\n", date)
		printer.Info("  config format:  %s\n", config.Version)
		printer.Info("  config dir:     %s\n", configDir)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
