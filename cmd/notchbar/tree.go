package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notchbar/internal/output"
)

var treeOpts struct {
	display string
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the node tree of each display",
	Long: `Show the nodes of each display as a tree, in layout order. Nodes whose
parent does not exist are listed separately as orphans; they are not drawn.`,
	Args: cobra.NoArgs,
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().StringVarP(&treeOpts.display, "display", "d", "",
		"Only show this display")
}

func runTree(cmd *cobra.Command, args []string) error {
	display, err := parseDisplayFlag(treeOpts.display)
	if err != nil {
		return err
	}
	nodes, err := fetchNodes("", display)
	if err != nil {
		return err
	}

	formatter, err := createFormatter(string(output.FormatTree))
	if err != nil {
		return err
	}
	return formatter.Nodes(os.Stdout, nodes)
}
