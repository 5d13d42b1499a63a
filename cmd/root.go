package cmd

import (
	"github.com/spf13/cobra"
)

// Version is overridden at startup from the embedded VERSION file.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "fixel",
	Short:   "Fixel exact-size image fixture generator",
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

// ApplyVersion re-applies Version to the root command after init-time
// overrides.
func ApplyVersion() {
	rootCmd.Version = Version
}

func init() {
	// No args for root command, only subcommands
}
