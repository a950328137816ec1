// Package tree resolves flat, parent-referencing node lists into an ordered
// forest of typed layout entries.
package tree

import (
	"cmp"
	"slices"

	"github.com/jmylchreest/notchbar/internal/model"
)

// Entry is a node placed in the forest. Children index into Forest.Entries.
type Entry struct {
	Kind     model.Kind
	Node     int
	Children []int
}

// Forest is an arena of entries built from one display's nodes.
type Forest struct {
	// Nodes holds the input nodes in sibling order.
	Nodes   []model.Node
	Entries []Entry
	Roots   []int
}

// Node returns the node backing entry i.
func (f *Forest) Node(i int) *model.Node {
	return &f.Nodes[f.Entries[i].Node]
}

// Len returns the number of entries in the forest.
func (f *Forest) Len() int {
	return len(f.Entries)
}

// Walk visits entries depth-first in sibling order. Returning false from fn
// skips the entry's children.
func (f *Forest) Walk(fn func(entry, depth int) bool) {
	var walk func(i, depth int)
	walk = func(i, depth int) {
		if !fn(i, depth) {
			return
		}
		for _, c := range f.Entries[i].Children {
			walk(c, depth+1)
		}
	}
	for _, r := range f.Roots {
		walk(r, 0)
	}
}

// Orphans returns the nodes that are not part of the forest, either because
// their parent is missing or because an ancestor is.
func (f *Forest) Orphans() []model.Node {
	placed := make([]bool, len(f.Nodes))
	for _, e := range f.Entries {
		placed[e.Node] = true
	}
	var out []model.Node
	for i, n := range f.Nodes {
		if !placed[i] {
			out = append(out, n)
		}
	}
	return out
}

// Resolve builds the forest for a set of nodes. Roots are nodes without a
// parent; children are gathered for row, column and box nodes only. Siblings
// are ordered by position with ties kept in input order. Nodes whose parent
// is absent are left out.
func Resolve(nodes []model.Node) *Forest {
	sorted := slices.Clone(nodes)
	slices.SortStableFunc(sorted, func(a, b model.Node) int {
		return cmp.Compare(a.Position, b.Position)
	})

	f := &Forest{
		Nodes:   sorted,
		Entries: make([]Entry, 0, len(sorted)),
	}

	children := make(map[string][]int)
	for i := range sorted {
		if sorted[i].HasParent() {
			children[sorted[i].Parent] = append(children[sorted[i].Parent], i)
		}
	}

	// A name seen twice in one branch would loop forever.
	visiting := make(map[string]bool)
	var build func(ni int) int
	build = func(ni int) int {
		n := &sorted[ni]
		kind := n.Kind
		if kind == "" {
			kind = model.KindItem
		}
		idx := len(f.Entries)
		f.Entries = append(f.Entries, Entry{Kind: kind, Node: ni})
		if !kind.IsContainer() || visiting[n.Name] {
			return idx
		}

		visiting[n.Name] = true
		var kids []int
		for _, ci := range children[n.Name] {
			if ci == ni {
				continue
			}
			kids = append(kids, build(ci))
		}
		visiting[n.Name] = false
		f.Entries[idx].Children = kids
		return idx
	}

	for i := range sorted {
		if !sorted[i].HasParent() {
			f.Roots = append(f.Roots, build(i))
		}
	}
	return f
}
