package tree

import (
	"testing"

	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name string, kind model.Kind, parent string, position int) model.Node {
	n := model.NewNode(name, 1)
	n.Kind = kind
	n.Parent = parent
	n.Position = position
	return n
}

// shape renders the forest as nested names for compact assertions.
func shape(f *Forest) []string {
	var out []string
	f.Walk(func(i, depth int) bool {
		prefix := ""
		for range depth {
			prefix += "  "
		}
		out = append(out, prefix+f.Node(i).Name)
		return true
	})
	return out
}

func TestResolve_ParentChild(t *testing.T) {
	f := Resolve([]model.Node{
		node("a", model.KindRow, "", 0),
		node("a.b", model.KindItem, "a", 0),
	})

	require.Len(t, f.Roots, 1)
	root := f.Entries[f.Roots[0]]
	assert.Equal(t, model.KindRow, root.Kind)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "a.b", f.Node(root.Children[0]).Name)
	assert.Equal(t, model.KindItem, f.Entries[root.Children[0]].Kind)
}

func TestResolve_SiblingOrder(t *testing.T) {
	f := Resolve([]model.Node{
		node("bar", model.KindColumn, "", 0),
		node("c", model.KindItem, "bar", 2),
		node("a", model.KindItem, "bar", 1),
		node("b", model.KindItem, "bar", 1),
		node("top2", model.KindItem, "", -1),
	})

	assert.Equal(t, []string{"top2", "bar", "  a", "  b", "  c"}, shape(f))
}

func TestResolve_DanglingParentExcluded(t *testing.T) {
	f := Resolve([]model.Node{
		node("root", model.KindRow, "", 0),
		node("lost", model.KindRow, "missing", 0),
		node("lost.child", model.KindItem, "lost", 0),
	})

	assert.Equal(t, []string{"root"}, shape(f))
	orphans := f.Orphans()
	require.Len(t, orphans, 2)
	assert.Equal(t, "lost", orphans[0].Name)
	assert.Equal(t, "lost.child", orphans[1].Name)
}

func TestResolve_ItemsHaveNoChildren(t *testing.T) {
	f := Resolve([]model.Node{
		node("leaf", model.KindItem, "", 0),
		node("under", model.KindItem, "leaf", 0),
	})

	assert.Equal(t, []string{"leaf"}, shape(f))
	assert.Empty(t, f.Entries[f.Roots[0]].Children)
}

func TestResolve_CycleIsExcluded(t *testing.T) {
	f := Resolve([]model.Node{
		node("x", model.KindRow, "y", 0),
		node("y", model.KindRow, "x", 0),
		node("ok", model.KindBox, "", 0),
	})

	assert.Equal(t, []string{"ok"}, shape(f))
	assert.Len(t, f.Orphans(), 2)
}

func TestResolve_DuplicateNamesTerminate(t *testing.T) {
	f := Resolve([]model.Node{
		node("a", model.KindRow, "", 0),
		node("a", model.KindRow, "a", 1),
	})

	assert.Equal(t, []string{"a", "  a"}, shape(f))
}

func TestResolve_EveryNodePlacedAtMostOnce(t *testing.T) {
	nodes := []model.Node{
		node("r", model.KindRow, "", 0),
		node("c1", model.KindColumn, "r", 0),
		node("c2", model.KindBox, "r", 1),
		node("i1", model.KindItem, "c1", 0),
		node("i2", model.KindItem, "c1", 1),
		node("i3", model.KindItem, "c2", 0),
	}
	f := Resolve(nodes)

	seen := make(map[int]int)
	for _, e := range f.Entries {
		seen[e.Node]++
	}
	assert.Len(t, seen, len(nodes))
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
	assert.Empty(t, f.Orphans())
}

func TestResolve_EmptyKindIsItem(t *testing.T) {
	f := Resolve([]model.Node{{Name: "plain"}})
	require.Len(t, f.Roots, 1)
	assert.Equal(t, model.KindItem, f.Entries[f.Roots[0]].Kind)
}

func TestWalk_SkipChildren(t *testing.T) {
	f := Resolve([]model.Node{
		node("r", model.KindRow, "", 0),
		node("child", model.KindItem, "r", 0),
	})

	var visited []string
	f.Walk(func(i, _ int) bool {
		visited = append(visited, f.Node(i).Name)
		return false
	})
	assert.Equal(t, []string{"r"}, visited)
}
