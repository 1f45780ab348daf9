package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/PavelStransky/expressions"
	"github.com/PavelStransky/expressions/internal/config"
	"github.com/PavelStransky/expressions/sqlstore"
)

var (
	// Global flags
	verbose bool
	cfgPath string

	cfg    *config.Config
	logger = zap.NewNop()
	// store is the open sqlite store, if the Global Context lives in one.
	store *sqlstore.Store
)

var rootCmd = &cobra.Command{
	Use:   "expressions",
	Short: "Evaluate operators and functions and manage the global context",
	Long: `expressions works with the values of the expression runtime: it applies
operators and functions to literal operands, manages the variables of the
persisted global context, and inspects and converts record files.

Literal operands are YAML: 2 is an integer, 2.0 a real, [1, 2] an array,
{x: 1, y: 2} a point.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.With(zap.String("session", uuid.NewString()))
		expressions.SetLogger(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close store", zap.Error(err))
			}
		}
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Configuration file")

	globalCmd.AddCommand(globalListCmd)
	globalCmd.AddCommand(globalGetCmd)
	globalCmd.AddCommand(globalSetCmd)
	globalCmd.AddCommand(globalClearCmd)
	globalCmd.AddCommand(globalWatchCmd)

	convertCmd.Flags().StringVarP(&convertMode, "mode", "m", "compressed", "Output mode: text, binary, compressed or raw")

	rootCmd.AddCommand(globalCmd)
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(funcsCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(convertCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openGlobal opens the configured Global Context store.
func openGlobal() (*expressions.Global, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	switch cfg.Global.Store {
	case "sqlite":
		if store == nil {
			store, err = sqlstore.Open(cfg.Global.Path)
			if err != nil {
				return nil, err
			}
		}
		logger.Debug("global context in sqlite", zap.String("path", cfg.Global.Path), zap.String("name", cfg.Global.Name))
		return expressions.NewGlobal(store.Port(cfg.Global.Name), mode, nil), nil
	default:
		logger.Debug("global context in file", zap.String("path", cfg.Global.Path))
		return expressions.NewGlobal(expressions.FilePort(cfg.Global.Path), mode, nil), nil
	}
}

// report prints an error with its detail, if it has one.
func report(cmd *cobra.Command, err error) error {
	if d, ok := err.(expressions.Detailer); ok && d.Detail() != "" {
		cmd.PrintErrln(d.Detail())
	}
	return err
}
