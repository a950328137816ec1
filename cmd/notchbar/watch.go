package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notchbar/internal/dbus"
	"github.com/jmylchreest/notchbar/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Launch the live node browser",
	Long: `Launch an interactive terminal view of the daemon's nodes.

The view refreshes whenever the daemon reports a change, and on the
configured interval.

Key bindings:
  j/k, ↑/↓    Navigate list
  enter       View node details
  tab         Show displays and status
  /           Search (plain text or a filter expression)
  c           Copy node as YAML
  C           Copy all nodes as JSON
  r           Refresh
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print clicked node names",
	Long: `Print the name of each node clicked on the bar, one per line, until
interrupted. Add --changes to also print store changes.

Example:
  notchbar listen | while read -r name; do echo "clicked $name"; done`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

var listenOpts struct {
	changes bool
}

func init() {
	rootCmd.AddCommand(watchCmd, listenCmd)

	listenCmd.Flags().BoolVar(&listenOpts.changes, "changes", false,
		"Also print store change events")
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	// Coalesce change signals; the view refetches everything anyway.
	changes := make(chan struct{}, 1)
	monitor := dbus.NewMonitor(logger)
	monitor.SetChangeHandler(func(dbus.ChangeSignal) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err := monitor.Start(); err != nil {
		logger.Warn("failed to watch for changes, falling back to polling", "error", err)
		changes = nil
	} else {
		defer func() { _ = monitor.Stop() }()
	}

	return tui.Run(tui.RunOptions{
		Config:  getConfig(),
		Source:  c,
		Changes: changes,
	})
}

func runListen(cmd *cobra.Command, args []string) error {
	if _, err := getClient(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	monitor := dbus.NewMonitor(logger)
	monitor.SetClickHandler(func(name string) {
		fmt.Fprintln(out, name)
	})
	if listenOpts.changes {
		monitor.SetChangeHandler(func(sig dbus.ChangeSignal) {
			fmt.Fprintf(out, "# %s displays=%v count=%d\n", sig.Type, sig.Displays, sig.Count)
		})
	}
	if err := monitor.Start(); err != nil {
		return err
	}
	defer func() { _ = monitor.Stop() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
