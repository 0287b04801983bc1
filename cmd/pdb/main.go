// Package main provides the pdb CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/anakievah/pdb/internal/config"
	"github.com/anakievah/pdb/internal/logging"
	"github.com/anakievah/pdb/internal/shell"
	"github.com/anakievah/pdb/internal/store"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// Persistent flags
var (
	humanOutput  bool
	rootDir      string
	logLevelFlag string
	timingFlag   bool
)

// Set up by PersistentPreRunE
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pdb",
	Short: "Minimal file-backed table store",
	Long: `pdb is a single-user table store kept in plain JSON files.

A schema document (db_meta.json) lists the tables and their typed columns
(int, str, bool); each table's rows live in data/<table>.json. Every record
gets an auto-assigned integer ID.

Run without arguments (or 'pdb shell') for the interactive shell, or use the
subcommands directly. Subcommands output JSON by default; use --human for
tables and messages.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runShell,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Database root directory (default from config, else current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&timingFlag, "timing", false, "Log how long each command takes")
	rootCmd.Version = Version
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(config.LoadOptions{})
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		c.Root = config.ExpandPath(rootDir)
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevelFlag
	}
	if flags.Changed("timing") {
		c.Timing = timingFlag
	}
	if err := c.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid configuration: %v", err)
	}

	l, err := logging.New(os.Stderr, c.EffectiveLogLevel(), c.LogFormat)
	if err != nil {
		exitWithError(ExitConfigError, "configuring logger: %v", err)
	}

	cfg = c
	logger = l
	logger.Debug("configuration loaded", "root", cfg.Root, "meta_file", cfg.MetaFile, "data_dir", cfg.DataDir)
	return nil
}

// openStore returns the store for the configured root.
func openStore() *store.Store {
	return store.New(cfg.Root, cfg.MetaFile, cfg.DataDir)
}

// newDispatcher builds a dispatcher over the configured store.
func newDispatcher(st *store.Store) *shell.Dispatcher {
	d := shell.NewDispatcher(st, logger)
	d.Timing = cfg.Timing
	return d
}
