package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notchbar/internal/core"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/output"
)

var queryOpts struct {
	display   string
	filter    string
	search    string
	sortBy    string
	sortOrder string
	format    string
}

var queryCmd = &cobra.Command{
	Use:   "query [NAME]",
	Short: "List nodes known to the daemon",
	Long: `List nodes known to the daemon, optionally restricted to one name or
display, filtered and sorted.

Filter expressions combine conditions with commas, all of which must match:
  name, type, parent, label, icon, image, on_click, notch   string fields
  display, position                                         integer fields
  root, container                                           boolean fields
Operators: = != ~ (contains) ~= (regex) and < <= > >= for integers.

Examples:
  notchbar query
  notchbar query clock --format json
  notchbar query --filter "parent=status,label~%" --sort position
  notchbar query --display 2 --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryOpts.display, "display", "d", "",
		"Only show nodes on this display")
	queryCmd.Flags().StringVar(&queryOpts.filter, "filter", "",
		"Filter expression (e.g. \"type=item,display=1\")")
	queryCmd.Flags().StringVarP(&queryOpts.search, "search", "s", "",
		"Search names, labels and icons")
	queryCmd.Flags().StringVar(&queryOpts.sortBy, "sort", "display",
		"Sort by field (display, name, position, type)")
	queryCmd.Flags().StringVar(&queryOpts.sortOrder, "order", "asc",
		"Sort order (asc, desc)")
	queryCmd.Flags().StringVarP(&queryOpts.format, "format", "f", "",
		"Output format (plain, json, yaml, tree; default from config)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	display, err := parseDisplayFlag(queryOpts.display)
	if err != nil {
		return err
	}
	var name string
	if len(args) > 0 {
		name = args[0]
	}

	nodes, err := fetchNodes(name, display)
	if err != nil {
		return err
	}

	nodes, err = applyQueryOptions(nodes, queryOpts.filter, queryOpts.search, queryOpts.sortBy, queryOpts.sortOrder)
	if err != nil {
		return err
	}

	formatter, err := createFormatter(queryOpts.format)
	if err != nil {
		return err
	}
	return formatter.Nodes(os.Stdout, nodes)
}

// fetchNodes queries the daemon.
func fetchNodes(name string, display *model.DisplayID) ([]model.Node, error) {
	c, err := getClient()
	if err != nil {
		return nil, err
	}
	nodes, err := c.Query(name, display)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	logger.Debug("fetched nodes", "count", len(nodes))
	return nodes, nil
}

// applyQueryOptions filters, searches and sorts nodes.
func applyQueryOptions(nodes []model.Node, filter, search, sortBy, sortOrder string) ([]model.Node, error) {
	if filter != "" {
		expr, err := core.ParseFilter(filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
		nodes = core.FilterWithExpr(nodes, expr)
	}
	if search != "" {
		nodes = core.Search(nodes, search)
	}

	field, err := core.ParseSortField(sortBy)
	if err != nil {
		return nil, err
	}
	order, err := core.ParseSortOrder(sortOrder)
	if err != nil {
		return nil, err
	}
	core.Sort(nodes, core.SortOptions{Field: field, Order: order})
	return nodes, nil
}

// parseDisplayFlag parses an optional display id.
func parseDisplayFlag(s string) (*model.DisplayID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid display %q: must be a non-negative integer", s)
	}
	d := model.DisplayID(id)
	return &d, nil
}

// createFormatter creates the output formatter for format, falling back to
// the configured default.
func createFormatter(format string) (output.Formatter, error) {
	if format == "" {
		format = getConfig().Output.Format
	}
	ft, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	opts := output.DefaultFormatterOptions()
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		// Plain text when piped
		opts.Color = false
	}
	return output.NewFormatter(ft, opts), nil
}
