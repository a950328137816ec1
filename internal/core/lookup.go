package core

import (
	"slices"
	"strings"

	"github.com/jmylchreest/notchbar/internal/model"
)

// LookupByName finds a node by name.
// Returns nil if not found.
func LookupByName(nodes []model.Node, name string) *model.Node {
	for i := range nodes {
		if nodes[i].Name == name {
			return &nodes[i]
		}
	}
	return nil
}

// Children returns the direct children of parent in position order.
func Children(nodes []model.Node, parent string) []model.Node {
	var result []model.Node
	for _, n := range nodes {
		if n.Parent == parent && parent != "" {
			result = append(result, n)
		}
	}
	Sort(result, SortOptions{Field: SortByPosition, Order: SortAsc})
	return result
}

// Search finds nodes matching a search term in name, label or icon.
// Case-insensitive substring match.
func Search(nodes []model.Node, term string) []model.Node {
	if term == "" {
		return nodes
	}

	term = strings.ToLower(term)
	var result []model.Node
	for _, n := range nodes {
		if strings.Contains(strings.ToLower(n.Name), term) ||
			strings.Contains(strings.ToLower(n.Label), term) ||
			strings.Contains(strings.ToLower(n.Icon), term) {
			result = append(result, n)
		}
	}
	return result
}

// UniqueDisplays returns the sorted displays that nodes are placed on.
func UniqueDisplays(nodes []model.Node) []model.DisplayID {
	var displays []model.DisplayID
	for _, n := range nodes {
		if !slices.Contains(displays, n.Display) {
			displays = append(displays, n.Display)
		}
	}
	slices.Sort(displays)
	return displays
}
