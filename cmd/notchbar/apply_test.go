package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notchbar/internal/model"
)

func TestParseApplyDocument(t *testing.T) {
	doc := `
display: 2
nodes:
  - name: status
    type: row
    notch_align: left
    gap: 6
  - name: clock
    parent: status
    position: 1
    label: "12:00"
    label_color: "#ff8800"
`
	display, nodes, err := parseApplyDocument(strings.NewReader(doc))
	require.NoError(t, err)
	require.NotNil(t, display)
	assert.EqualValues(t, 2, *display)
	require.Len(t, nodes, 2)

	assert.Equal(t, "status", nodes[0].Name)
	assert.Equal(t, model.KindRow, nodes[0].Kind)
	assert.InDelta(t, 6, nodes[0].Style.Gap, 0.001)

	assert.Equal(t, "clock", nodes[1].Name)
	assert.Equal(t, model.KindItem, nodes[1].Kind)
	assert.Equal(t, "status", nodes[1].Parent)
	assert.Equal(t, 1, nodes[1].Position)
	assert.Equal(t, "12:00", nodes[1].Label)
}

func TestParseApplyDocumentWithoutDisplay(t *testing.T) {
	display, nodes, err := parseApplyDocument(strings.NewReader("nodes:\n  - name: a\n"))
	require.NoError(t, err)
	assert.Nil(t, display)
	require.Len(t, nodes, 1)
}

func TestParseApplyDocumentEmpty(t *testing.T) {
	display, nodes, err := parseApplyDocument(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, display)
	assert.Empty(t, nodes)
}

func TestParseApplyDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing name", "nodes:\n  - label: x\n", "name must be set"},
		{"per node display", "nodes:\n  - name: a\n    display: 2\n", "display is set for the whole document"},
		{"unknown property", "nodes:\n  - name: a\n    colour: red\n", "unknown property"},
		{"bad color", "nodes:\n  - name: a\n    label_color: nope\n", "label_color"},
		{"unknown field", "screens: 1\n", "field screens not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseApplyDocument(strings.NewReader(tt.doc))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
