package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fixel/internal"
)

var inspectFormatFlag string

var inspectCmd = &cobra.Command{
	Use:   "inspect [folder]",
	Short: "Inventory a directory of generated fixtures",
	Long: `Walk a fixture directory, decode each fixture's header, and report
per-format counts, byte totals, the largest file, and any file that fails
to decode in its format. Only headers are read, so inspecting directories
of multi-gigabyte fixtures is cheap.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]

		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("folder does not exist or is not a directory: %s", folder)
		}

		report, err := internal.InspectDir(folder)
		if err != nil {
			return fmt.Errorf("failed to inspect folder: %w", err)
		}

		return internal.DisplayReport(report, inspectFormatFlag)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFormatFlag, "format", "table", "Output format: table, json")

	rootCmd.AddCommand(inspectCmd)
}
