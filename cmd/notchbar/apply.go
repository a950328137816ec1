package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/notchbar/internal/model"
)

var applyOpts struct {
	file    string
	display string
}

var applyCmd = &cobra.Command{
	Use:   "apply -f FILE",
	Short: "Replace the content of a display from a YAML file",
	Long: `Replace every node on a display with the nodes described in a YAML file.
The whole document is applied in a single layout pass.

Each node is a mapping of a name and its properties, using the same keys as
the add command. Use "-" to read the document from stdin.

Example document:

  display: 1
  nodes:
    - name: status
      type: row
      notch_align: right
      gap: 6
    - name: clock
      parent: status
      label: "12:00"
    - name: battery
      parent: status
      icon: ""
      label: 80%`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyOpts.file, "file", "f", "",
		"YAML document to apply (- for stdin)")
	applyCmd.Flags().StringVarP(&applyOpts.display, "display", "d", "",
		"Display to replace (overrides the document)")
	_ = applyCmd.MarkFlagRequired("file")
}

// applyDocument is the YAML document read by the apply command.
type applyDocument struct {
	Display *model.DisplayID    `yaml:"display"`
	Nodes   []map[string]string `yaml:"nodes"`
}

// parseApplyDocument decodes a document into the target display and nodes.
func parseApplyDocument(r io.Reader) (*model.DisplayID, []model.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc applyDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("failed to parse document: %w", err)
	}

	nodes := make([]model.Node, 0, len(doc.Nodes))
	for i, props := range doc.Nodes {
		name := props["name"]
		if name == "" {
			return nil, nil, fmt.Errorf("node %d: name must be set", i)
		}
		delete(props, "name")
		if _, ok := props["display"]; ok {
			return nil, nil, fmt.Errorf("node %q: display is set for the whole document", name)
		}

		n := model.NewNode(name, 0)
		if err := model.ApplyProperties(&n, props); err != nil {
			return nil, nil, fmt.Errorf("node %q: %w", name, err)
		}
		if err := n.Validate(); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	return doc.Display, nodes, nil
}

func runApply(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if applyOpts.file != "-" {
		f, err := os.Open(applyOpts.file)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	display, nodes, err := parseApplyDocument(r)
	if err != nil {
		return err
	}
	if override, err := parseDisplayFlag(applyOpts.display); err != nil {
		return err
	} else if override != nil {
		display = override
	}

	c, err := getClient()
	if err != nil {
		return err
	}
	if display == nil {
		id, err := mainDisplay()
		if err != nil {
			return err
		}
		display = &id
	}

	if err := c.Refresh(*display, nodes); err != nil {
		return err
	}
	logger.Debug("applied document", "display", *display, "nodes", len(nodes))
	return nil
}

// mainDisplay asks the daemon for its main display.
func mainDisplay() (model.DisplayID, error) {
	c, err := getClient()
	if err != nil {
		return 0, err
	}
	displays, err := c.Displays()
	if err != nil {
		return 0, fmt.Errorf("failed to list displays: %w", err)
	}
	for _, d := range displays {
		if d.Main && d.Attached {
			return d.ID, nil
		}
	}
	return 0, fmt.Errorf("no main display attached")
}
