// Package output provides formatters for nodes, displays and daemon status.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/model"
)

// Formatter writes command results.
type Formatter interface {
	// Nodes writes a node list.
	Nodes(w io.Writer, nodes []model.Node) error
	// Displays writes display reports.
	Displays(w io.Writer, displays []daemon.DisplayReport) error
	// Status writes the daemon status.
	Status(w io.Writer, st daemon.Status) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatTree  FormatType = "tree"
)

// ValidFormats returns all valid format types.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatTree}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (FormatType, error) {
	for _, f := range ValidFormats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q, must be one of: %v", s, ValidFormats())
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Color bool             // Style tree and table output
	Now   func() time.Time // Clock for relative times, time.Now when nil
}

// DefaultFormatterOptions returns options for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{Color: true, Now: time.Now}
}

func (o FormatterOptions) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatTree:
		return NewTreeFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}
