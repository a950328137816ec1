// Package main provides the CLI entrypoint for notchbar.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notchbar/internal/config"
	"github.com/jmylchreest/notchbar/internal/dbus"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
	}
	logger *slog.Logger

	// client is the daemon connection, opened lazily by getClient
	client *dbus.Client
)

// errDaemonNotRunning is returned when notchbard does not own its bus name.
var errDaemonNotRunning = errors.New("notchbard is not running")

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "notchbar",
	Short: "Control the notchbar status bar daemon",
	Long: `notchbar controls notchbard, a status bar that wraps around the notch of
laptop displays.

Nodes are named widgets (items, rows and columns) that the daemon lays out
into transparent windows on each display. This command adds, updates and
removes nodes and inspects what the daemon is showing.

Running notchbar without a subcommand launches the live watch view.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if client != nil {
			return client.Close()
		}
		return nil
	},
	// Default to the watch view when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/notchbar/config.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// getClient connects to the daemon, failing when it is not running.
func getClient() (*dbus.Client, error) {
	if client != nil {
		return client, nil
	}

	c, err := dbus.Connect()
	if err != nil {
		return nil, err
	}
	running, err := c.Running()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if !running {
		_ = c.Close()
		return nil, errDaemonNotRunning
	}

	logger.Debug("connected to daemon", "interface", dbus.DBusInterface)
	client = c
	return client, nil
}

// getConfig returns the global config instance.
func getConfig() *config.Config {
	return cfg
}
