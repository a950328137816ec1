package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testOptions() FormatterOptions {
	return FormatterOptions{Now: func() time.Time { return testNow }}
}

func testNodes() []model.Node {
	row := model.NewNode("status", 1)
	row.Kind = model.KindRow

	clock := model.NewNode("clock", 1)
	clock.Parent = "status"
	clock.Label = "12:00"
	clock.Position = 1

	battery := model.NewNode("battery", 1)
	battery.Parent = "status"
	battery.Icon = "⚡"
	battery.Label = "80%"

	ghost := model.NewNode("ghost", 1)
	ghost.Parent = "missing"

	ext := model.NewNode("ext", 2)
	ext.Label = "two\nlines"

	return []model.Node{row, clock, battery, ghost, ext}
}

func testDisplays() []daemon.DisplayReport {
	return []daemon.DisplayReport{
		{
			ID: 1, Name: "eDP-1", Main: true, Attached: true, Width: 1512, Height: 982,
			Notch: &layout.Rect{X: 656, Y: 950, Width: 200, Height: 32},
			Nodes: 4,
			Windows: []daemon.WindowReport{
				{Alignment: "left"},
				{Alignment: "right", Hidden: true},
			},
		},
		{ID: 2, Name: "DP-2", Nodes: 1},
	}
}

func testStatus() daemon.Status {
	return daemon.Status{
		Version:    "1.2.0",
		StartedAt:  testNow.Add(-3 * time.Hour),
		Nodes:      1234,
		Displays:   2,
		Windows:    3,
		Passes:     42,
		LastPass:   testNow.Add(-2 * time.Second),
		LastPassID: "01HX",
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range ValidFormats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewFormatter(t *testing.T) {
	opts := testOptions()
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, opts))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML, opts))
	assert.IsType(t, &TreeFormatter{}, NewFormatter(FormatTree, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter(FormatPlain, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter("unknown", opts))
}

func TestJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(testOptions())

	var buf bytes.Buffer
	require.NoError(t, f.Nodes(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Nodes(&buf, testNodes()))
	var nodes []model.Node
	require.NoError(t, json.Unmarshal(buf.Bytes(), &nodes))
	assert.Equal(t, testNodes(), nodes)

	buf.Reset()
	require.NoError(t, f.Displays(&buf, testDisplays()))
	assert.Contains(t, buf.String(), `"name": "eDP-1"`)
	assert.Contains(t, buf.String(), `"notch"`)

	buf.Reset()
	require.NoError(t, f.Status(&buf, daemon.Status{Version: "1.0.0"}))
	assert.Contains(t, buf.String(), `"version": "1.0.0"`)
	assert.NotContains(t, buf.String(), "last_pass")
}

func TestYAMLFormatter(t *testing.T) {
	f := NewYAMLFormatter(testOptions())

	var buf bytes.Buffer
	require.NoError(t, f.Nodes(&buf, testNodes()))
	var nodes []model.Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &nodes))
	assert.Equal(t, testNodes(), nodes)

	buf.Reset()
	require.NoError(t, f.Displays(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Status(&buf, testStatus()))
	assert.Contains(t, buf.String(), "version: 1.2.0")
	assert.Contains(t, buf.String(), "last_pass_id: 01HX")
}

func TestPlainFormatterNodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(testOptions()).Nodes(&buf, testNodes()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "status\trow\t1\t-\t0\t", lines[0])
	assert.Equal(t, "clock\titem\t1\tstatus\t1\t12:00", lines[1])
	assert.Equal(t, "ext\titem\t2\t-\t0\ttwo lines", lines[4])
}

func TestPlainFormatterDisplays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(testOptions()).Displays(&buf, testDisplays()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1\teDP-1\t1512x982\t200x32+656\tmain\t4", lines[0])
	assert.Equal(t, "2\tDP-2\t-\t-\tdetached\t1", lines[1])
}

func TestPlainFormatterStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(testOptions()).Status(&buf, testStatus()))

	out := buf.String()
	assert.Contains(t, out, "version:   1.2.0")
	assert.Contains(t, out, "started:   3 hours ago")
	assert.Contains(t, out, "nodes:     1,234")
	assert.Contains(t, out, "last pass: 2 seconds ago (01HX)")
	assert.Contains(t, out, "pending:   false")

	buf.Reset()
	require.NoError(t, NewPlainFormatter(testOptions()).Status(&buf, daemon.Status{}))
	assert.Contains(t, buf.String(), "last pass: never")
}

func TestTreeFormatterNodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTreeFormatter(testOptions()).Nodes(&buf, testNodes()))

	out := buf.String()
	assert.Contains(t, out, "display 1")
	assert.Contains(t, out, "display 2")
	assert.Contains(t, out, "status [row]")
	assert.Contains(t, out, `battery [item] "⚡ 80%"`)
	assert.Contains(t, out, "orphans")
	assert.Contains(t, out, "ghost [item] → missing")

	// Siblings are ordered by position.
	assert.Less(t, strings.Index(out, "battery"), strings.Index(out, "clock"))
	assert.Less(t, strings.Index(out, "display 1"), strings.Index(out, "display 2"))
}

func TestTreeFormatterDisplays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTreeFormatter(testOptions()).Displays(&buf, testDisplays()))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "eDP-1")
	assert.Contains(t, out, "left,right(hidden)")
	assert.Contains(t, out, "detached")
}

func TestTreeFormatterStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTreeFormatter(testOptions()).Status(&buf, testStatus()))
	assert.Contains(t, buf.String(), "42")
	assert.Contains(t, buf.String(), "1.2.0")
}
