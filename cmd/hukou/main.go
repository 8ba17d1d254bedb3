package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qixiang/hukou/internal/config"
	"github.com/qixiang/hukou/internal/logging"
	"github.com/qixiang/hukou/internal/manager"
	"github.com/qixiang/hukou/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	configPath string
	dbPath     string
	failClosed bool
	verbosity  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hukou",
		Short:         "Hukou - household registry",
		Long:          `Hukou manages household registration records in a local SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (default ./hukou.db)")
	rootCmd.PersistentFlags().BoolVar(&failClosed, "fail-closed", false, "Propagate store errors from reads instead of showing an empty listing")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.AddCommand(
		newListCmd(),
		newShowCmd(),
		newSearchCmd(),
		newStatsCmd(),
		newAddCmd(),
		newEditCmd(),
		newRemoveCmd(),
		newSeedCmd(),
		newExportCmd(),
		newDBCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("hukou %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads config, applies logging and opens the manager over the
// store. Every subcommand that touches data starts here.
func setup() (*manager.Manager, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if failClosed {
		cfg.Cache.FailClosed = true
	}

	level := cfg.Log.Level
	switch verbosity {
	case 1:
		level = "debug"
	case 2:
		level = "trace"
	default:
		if verbosity > 2 {
			level = "trace"
		}
	}
	if cfg.Log.File == config.DefaultLogFile {
		cfg.Log.File = logging.FilePathForDB(cfg.Database.Path)
	}
	logging.Apply(&cfg.Log, level)

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	log.Debug().Str("database", cfg.Database.Path).Msg("Store ready")
	return manager.New(st, manager.Options{FailClosed: cfg.Cache.FailClosed}), cfg, nil
}
