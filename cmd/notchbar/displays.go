package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notchbar/internal/model"
)

var displaysOpts struct {
	format string
}

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List displays and their windows",
	Long: `List the displays known to the daemon with their size, notch, fullscreen
state, node count and active windows. Detached displays that still hold
nodes are listed too.`,
	Args: cobra.NoArgs,
	RunE: runDisplays,
}

var fullscreenCmd = &cobra.Command{
	Use:   "fullscreen DISPLAY [on|off|toggle]",
	Short: "Set the fullscreen state of a display",
	Long: `Tell the daemon whether a display is showing a fullscreen application.
Windows on a fullscreen display are hidden without being laid out again.

Without a state the current state is toggled.

Examples:
  notchbar fullscreen 1 on
  notchbar fullscreen 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFullscreen,
}

func init() {
	rootCmd.AddCommand(displaysCmd, fullscreenCmd)

	displaysCmd.Flags().StringVarP(&displaysOpts.format, "format", "f", "",
		"Output format (plain, json, yaml, tree; default from config)")
}

func runDisplays(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	displays, err := c.Displays()
	if err != nil {
		return fmt.Errorf("failed to list displays: %w", err)
	}

	formatter, err := createFormatter(displaysOpts.format)
	if err != nil {
		return err
	}
	return formatter.Displays(os.Stdout, displays)
}

// fullscreenState is the requested change for the fullscreen command.
type fullscreenState int

const (
	fullscreenToggle fullscreenState = iota
	fullscreenOn
	fullscreenOff
)

// parseFullscreenState parses on/off/toggle and their boolean spellings.
func parseFullscreenState(s string) (fullscreenState, error) {
	switch strings.ToLower(s) {
	case "", "toggle":
		return fullscreenToggle, nil
	case "on", "true", "yes", "1":
		return fullscreenOn, nil
	case "off", "false", "no", "0":
		return fullscreenOff, nil
	default:
		return 0, fmt.Errorf("invalid fullscreen state %q, must be on, off or toggle", s)
	}
}

func runFullscreen(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid display %q: must be a non-negative integer", args[0])
	}
	display := model.DisplayID(id)

	var arg string
	if len(args) > 1 {
		arg = args[1]
	}
	state, err := parseFullscreenState(arg)
	if err != nil {
		return err
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	var fullscreen bool
	switch state {
	case fullscreenOn:
		fullscreen = true
	case fullscreenOff:
		fullscreen = false
	case fullscreenToggle:
		displays, err := c.Displays()
		if err != nil {
			return fmt.Errorf("failed to list displays: %w", err)
		}
		found := false
		for _, d := range displays {
			if d.ID == display {
				fullscreen = !d.Fullscreen
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("display %d not found", display)
		}
	}

	if err := c.SetFullscreen(display, fullscreen); err != nil {
		return err
	}
	logger.Debug("fullscreen set", "display", display, "fullscreen", fullscreen)
	return nil
}
