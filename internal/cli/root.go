// Package cli wires the parceltrack commands: the sync loop, configuration
// management, logging setup, and the choice between the interactive TUI and
// plain output.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the parceltrack CLI. It
// wires up logging and the sync and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *loggingResult

	cmd := &cobra.Command{
		Use:     "parceltrack",
		Short:   "Batch parcel status checker for Czech Post tracking numbers",
		Long:    "parceltrack: enrich a spreadsheet of tracking numbers with current parcel status and required actions",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.AddCommand(newSyncCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Check every tracking number in a spreadsheet
  parceltrack sync --input shipments.xlsx

  # Explicit output path, no interactive progress display
  parceltrack sync --input shipments.csv --output checked.csv --no-tui

  # Initialize the user configuration file
  parceltrack config init`
