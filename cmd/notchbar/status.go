package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusOpts struct {
	format string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long: `Show the daemon version, uptime, node and window counts, and when the
last layout pass ran.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", "",
		"Output format (plain, json, yaml, tree; default from config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	st, err := c.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	formatter, err := createFormatter(statusOpts.format)
	if err != nil {
		return err
	}
	return formatter.Status(os.Stdout, st)
}
