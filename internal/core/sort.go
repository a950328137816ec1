package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jmylchreest/notchbar/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByDisplay  SortField = "display"
	SortByName     SortField = "name"
	SortByPosition SortField = "position"
	SortByType     SortField = "type"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField // Field to sort by
	Order SortOrder // Sort order (asc/desc)
}

// DefaultSortOptions returns default sort options (display, then name).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByDisplay,
		Order: SortAsc,
	}
}

// Sort sorts nodes in place. Ties are broken by display and then name so
// output is deterministic.
func Sort(nodes []model.Node, opts SortOptions) {
	slices.SortStableFunc(nodes, func(a, b model.Node) int {
		var c int
		switch opts.Field {
		case SortByName:
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case SortByPosition:
			c = cmp.Compare(a.Position, b.Position)
		case SortByType:
			c = cmp.Compare(a.Kind, b.Kind)
		}
		if c == 0 {
			c = cmp.Or(cmp.Compare(a.Display, b.Display), cmp.Compare(a.Name, b.Name))
		}
		if opts.Order == SortDesc {
			return -c
		}
		return c
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "display", "d":
		return SortByDisplay, nil
	case "name", "n":
		return SortByName, nil
	case "position", "pos", "p":
		return SortByPosition, nil
	case "type", "kind", "t":
		return SortByType, nil
	default:
		return SortByDisplay, nil
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc, nil
	case "desc", "descending", "d":
		return SortDesc, nil
	default:
		return SortAsc, nil
	}
}
