package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add NAME [key=value...]",
	Short: "Add a node",
	Long: `Add a node to the bar.

Properties are given as flags, as key=value arguments, or through presets
defined in the config file. The node is placed on the main display unless
--display is given.

Examples:
  # A row holding a clock, right of the notch
  notchbar add status --type row --notch-align right --gap 6
  notchbar add clock --parent status --label "12:00" --font-weight bold

  # Using key=value arguments and a preset
  notchbar add battery parent=status label=80% --preset pill`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var setCmd = &cobra.Command{
	Use:   "set NAME [key=value...]",
	Short: "Update node properties",
	Long: `Update properties of an existing node in place.

An empty value clears a property. Changing --display moves the node and
all of its descendants to that display.

Examples:
  notchbar set clock --label "12:01"
  notchbar set clock label-color=#ff8800 --icon ""`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSet,
}

var removeCmd = &cobra.Command{
	Use:     "remove NAME...",
	Aliases: []string{"rm"},
	Short:   "Remove nodes and their descendants",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRemove,
}

var (
	addProps *propertyFlags
	setProps *propertyFlags
)

func init() {
	rootCmd.AddCommand(addCmd, setCmd, removeCmd)

	addProps = bindPropertyFlags(addCmd.Flags())
	setProps = bindPropertyFlags(setCmd.Flags())
}

func runAdd(cmd *cobra.Command, args []string) error {
	props, err := addProps.collect(cmd.Flags(), getConfig(), args[1:])
	if err != nil {
		return err
	}

	c, err := getClient()
	if err != nil {
		return err
	}
	logger.Debug("adding node", "name", args[0], "properties", len(props))
	return c.Add(args[0], props)
}

func runSet(cmd *cobra.Command, args []string) error {
	props, err := setProps.collect(cmd.Flags(), getConfig(), args[1:])
	if err != nil {
		return err
	}
	if len(props) == 0 {
		return fmt.Errorf("no properties given")
	}

	c, err := getClient()
	if err != nil {
		return err
	}
	logger.Debug("updating node", "name", args[0], "properties", len(props))
	return c.Set(args[0], props)
}

func runRemove(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	var failed int
	for _, name := range args {
		if err := c.Remove(name); err != nil {
			logger.Warn("failed to remove node", "name", name, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d of %d nodes", failed, len(args))
	}
	return nil
}
