// Package cli implements the poktwallet command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and released by cleanup once the command returns.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mrz1836/poktwallet/internal/config"
	"github.com/mrz1836/poktwallet/internal/output"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter

	// app is opened on first use by commands that touch the store.
	app *CommandContext

	helpOnce sync.Once
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "poktwallet",
	Short: "Morse and Shannon credential manager with guided migration",
	Long: `poktwallet imports Pocket Network credentials of any supported format,
keeps a deduplicated registry of Morse and Shannon wallets, and walks you
through migrating a Morse account to Shannon via a migration service.

Supported inputs: encrypted key files (PPK), JSON wallet exports, hex private
keys, and 12 or 24 word mnemonics.

Example:
  poktwallet import --model morse --input ./morse-export.json
  poktwallet wallet list
  poktwallet migrate`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	helpOnce.Do(func() { describeSubcommands(rootCmd) })
	defer cleanup()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		format := output.FormatText
		if formatter != nil {
			format = formatter.Format()
		}
		_ = output.FormatError(rootCmd.ErrOrStderr(), err, format)
	}
	return err
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return walleterr.ExitCode(err)
}

// initGlobals loads configuration and sets up the logger and formatter.
func initGlobals(cmd *cobra.Command) error {
	env, err := config.ReadEnvironment()
	if err != nil {
		return walleterr.Because(walleterr.ErrConfigInvalid, err, "invalid environment")
	}

	home := homeDir
	if home == "" {
		home = env.Home
	}
	if home == "" {
		home = config.DefaultHome()
	}
	home = config.ExpandHome(home)

	cfg, err = config.Load(config.Path(home))
	if err != nil {
		if !walleterr.Is(err, walleterr.ErrConfigNotFound) {
			return err
		}
		cfg = config.Defaults()
	}
	cfg.Home = home
	env.Apply(cfg)
	cfg.Home = config.ExpandHome(cfg.Home)

	// Flags beat environment and file.
	if homeDir != "" {
		cfg.Home = home
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err = cfg.Validate(); err != nil {
		return err
	}

	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File, cfg.Logging.Format)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	output.SetColor(cfg.Output.Color != "never")
	explicit := output.ParseFormat(cfg.Output.DefaultFormat)
	formatter = output.NewFormatter(output.DetectFormat(cmd.OutOrStdout(), explicit))

	return nil
}

// requireApp opens the store and domain services on first use.
func requireApp(cmd *cobra.Command) (*CommandContext, error) {
	if app != nil {
		return app, nil
	}
	var err error
	app, err = NewCommandContext(cmd.Context(), cfg, logger, formatter)
	return app, err
}

// cleanup releases resources.
func cleanup() {
	if app != nil {
		if err := app.Close(); err != nil && logger != nil {
			logger.Error("closing store: %v", err)
		}
		app = nil
	}
	if logger != nil {
		_ = logger.Close()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "poktwallet data directory (default: ~/.poktwallet)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
