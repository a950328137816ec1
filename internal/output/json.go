package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/model"
)

// JSONFormatter formats results as indented JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Nodes writes nodes as a JSON array.
func (f *JSONFormatter) Nodes(w io.Writer, nodes []model.Node) error {
	if nodes == nil {
		nodes = []model.Node{}
	}
	return f.encode(w, nodes)
}

// Displays writes display reports as a JSON array.
func (f *JSONFormatter) Displays(w io.Writer, displays []daemon.DisplayReport) error {
	if displays == nil {
		displays = []daemon.DisplayReport{}
	}
	return f.encode(w, displays)
}

// Status writes the status as a JSON object.
func (f *JSONFormatter) Status(w io.Writer, st daemon.Status) error {
	return f.encode(w, st)
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// YAMLFormatter formats results as YAML documents.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Nodes writes nodes as a YAML sequence.
func (f *YAMLFormatter) Nodes(w io.Writer, nodes []model.Node) error {
	if nodes == nil {
		nodes = []model.Node{}
	}
	return f.encode(w, nodes)
}

// Displays writes display reports as a YAML sequence.
func (f *YAMLFormatter) Displays(w io.Writer, displays []daemon.DisplayReport) error {
	if displays == nil {
		displays = []daemon.DisplayReport{}
	}
	return f.encode(w, displays)
}

// Status writes the status as a YAML mapping.
func (f *YAMLFormatter) Status(w io.Writer, st daemon.Status) error {
	return f.encode(w, st)
}

func (f *YAMLFormatter) encode(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
