package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/axellelanca/urlalias/internal/app"
	"github.com/axellelanca/urlalias/internal/config"
	"github.com/axellelanca/urlalias/internal/logger"
	"github.com/spf13/cobra"
)

// Cfg is the loaded configuration, available to every command once RootCmd's
// pre-run hook has completed.
var Cfg *config.Config

// Logger is the application logger, also installed as the slog default.
var Logger = slog.Default()

var configDir string

// RootCmd is the base command for the CLI application.
// Subcommands register themselves via their own init() functions.
var RootCmd = &cobra.Command{
	Use:   "urlalias",
	Short: "A URL alias service",
	Long: `A URL alias service that turns long URLs into short codes, redirects
visitors, and reports click statistics over the last hour and day.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute is the main entry point for the Cobra application.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultConfigDir, "directory containing config.yaml")
}

// initConfig loads the configuration and sets up logging.
func initConfig() error {
	cfg, err := config.LoadConfigFrom(configDir)
	if err != nil {
		return err
	}
	Cfg = cfg

	Logger = logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(Logger)
	return nil
}

// OpenApp builds the application from the loaded configuration.
// Callers must Close it.
func OpenApp(ctx context.Context) (*app.App, error) {
	if Cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return app.New(ctx, Cfg, Logger)
}
