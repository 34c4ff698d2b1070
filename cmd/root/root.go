// Package root contains the root command for the application
package root

import (
	"rferreira/meubolso/internal/config"
	"rferreira/meubolso/internal/container"
	"rferreira/meubolso/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.GetLogger()

	// AppContainer holds the wired application dependencies. Populated by
	// the root command before any subcommand runs.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "meubolso",
		Short: "Personal finance server with bank statement import.",
		Long: `meubolso serves the personal finance API: accounts, cards, categories
and transactions backed by a remote store, plus the bank statement import
pipeline (CSV, OFX and PDF) with automatic categorization.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to meubolso!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}

			AppContainer, err = container.NewContainer(cfg)
			if err != nil {
				return err
			}

			Log = AppContainer.GetLogger()
			logging.SetDefaultLogger(Log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			// Flushes learned category mappings back to disk.
			if err := AppContainer.Close(); err != nil {
				Log.Warn("Cleanup failed",
					logging.Field{Key: "error", Value: err.Error()})
			}
		},
	}

	// SharedFlags are the common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
}
