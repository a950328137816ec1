package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notchbar/internal/model"
)

func TestLookupByName(t *testing.T) {
	nodes := testNodes()

	n := LookupByName(nodes, "clock")
	require.NotNil(t, n)
	assert.Equal(t, "12:00", n.Label)

	// The result points into the slice.
	n.Label = "13:00"
	assert.Equal(t, "13:00", nodes[1].Label)

	assert.Nil(t, LookupByName(nodes, "missing"))
	assert.Nil(t, LookupByName(nil, "clock"))
}

func TestChildren(t *testing.T) {
	nodes := testNodes()
	assert.Equal(t, []string{"battery", "clock"}, names(Children(nodes, "status")))
	assert.Empty(t, Children(nodes, "clock"))
	assert.Empty(t, Children(nodes, ""))
}

func TestSearch(t *testing.T) {
	nodes := testNodes()

	assert.Equal(t, nodes, Search(nodes, ""))
	assert.Equal(t, []string{"battery"}, names(Search(nodes, "BATT")))
	assert.Equal(t, []string{"clock"}, names(Search(nodes, "12:")))
	assert.Equal(t, []string{"wifi"}, names(Search(nodes, "📶")))
	assert.Empty(t, Search(nodes, "nothing"))
}

func TestUniqueDisplays(t *testing.T) {
	nodes := testNodes()
	nodes = append(nodes, model.NewNode("x", 0))
	assert.Equal(t, []model.DisplayID{0, 1, 2}, UniqueDisplays(nodes))
	assert.Empty(t, UniqueDisplays(nil))
}
