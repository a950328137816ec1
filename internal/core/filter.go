// Package core provides filtering, sorting, and lookup logic for node lists.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmylchreest/notchbar/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// fieldKind is the value type of a filter field.
type fieldKind int

const (
	fieldString fieldKind = iota
	fieldInt
	fieldBool
)

// filterFields maps field names and aliases to their canonical name and type.
var filterFields = map[string]struct {
	name string
	kind fieldKind
}{
	"name":      {"name", fieldString},
	"type":      {"type", fieldString},
	"kind":      {"type", fieldString},
	"parent":    {"parent", fieldString},
	"label":     {"label", fieldString},
	"text":      {"label", fieldString},
	"icon":      {"icon", fieldString},
	"image":     {"image", fieldString},
	"on_click":  {"on_click", fieldString},
	"click":     {"on_click", fieldString},
	"notch":     {"notch", fieldString},
	"display":   {"display", fieldInt},
	"position":  {"position", fieldInt},
	"pos":       {"position", fieldInt},
	"root":      {"root", fieldBool},
	"container": {"container", fieldBool},
}

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // Canonical field name
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	kind    fieldKind
	regex   *regexp.Regexp
	intVal  int
	boolVal bool
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: name, type, parent, label, icon, image, on_click, notch,
// display, position, root, container
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "type=row" - all rows
//   - "parent=status" - direct children of status
//   - "label~wifi" - label contains "wifi"
//   - "display=2,root=true" - top-level nodes on display 2
//   - "name~=^bat" - names matching a regex
func ParseFilter(expr string) (*FilterExpr, error) {
	filter := &FilterExpr{}
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}
	return filter, nil
}

// IsFilterExpression reports whether s parses as a filter expression rather
// than plain search text.
func IsFilterExpression(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	_, err := ParseFilter(s)
	return err == nil
}

// parseCondition parses a single condition like "type=row" or "label~cpu".
func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "=".
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			continue
		}
		cond := FilterCondition{
			Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
			Operator: op,
			Value:    strings.TrimSpace(s[idx+len(op):]),
		}
		if err := cond.init(); err != nil {
			return FilterCondition{}, err
		}
		return cond, nil
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init validates the field and pre-parses the value.
func (c *FilterCondition) init() error {
	field, ok := filterFields[c.Field]
	if !ok {
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}
	c.Field = field.name
	c.kind = field.kind

	switch c.kind {
	case fieldInt:
		v, err := strconv.Atoi(c.Value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: must be an integer", c.Field, c.Value)
		}
		c.intVal = v
		if c.Operator == FilterOpContains || c.Operator == FilterOpRegex {
			return fmt.Errorf("operator %s not supported for %s", c.Operator, c.Field)
		}
	case fieldBool:
		c.boolVal = parseBool(c.Value)
		if c.Operator != FilterOpEqual && c.Operator != FilterOpNotEqual {
			return fmt.Errorf("operator %s not supported for %s", c.Operator, c.Field)
		}
	case fieldString:
		switch c.Operator {
		case FilterOpGreater, FilterOpLess, FilterOpGreaterEq, FilterOpLessEq:
			return fmt.Errorf("operator %s not supported for %s", c.Operator, c.Field)
		}
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}
	return nil
}

// parseBool parses various boolean representations.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y", "t":
		return true
	default:
		return false
	}
}

// Match tests if a node matches the filter expression.
// All conditions must match (AND logic).
func (f *FilterExpr) Match(n model.Node) bool {
	for i := range f.Conditions {
		if !f.Conditions[i].Match(n) {
			return false
		}
	}
	return true
}

// Match tests if a node matches this single condition.
func (c *FilterCondition) Match(n model.Node) bool {
	switch c.Field {
	case "name":
		return c.matchString(n.Name)
	case "type":
		return c.matchString(string(n.Kind))
	case "parent":
		return c.matchString(n.Parent)
	case "label":
		return c.matchString(n.Label)
	case "icon":
		return c.matchString(n.Icon)
	case "image":
		return c.matchString(n.Image)
	case "on_click":
		return c.matchString(n.OnClick)
	case "notch":
		side := n.Style.NotchAlign
		if side == "" {
			side = model.NotchRight
		}
		return c.matchString(string(side))
	case "display":
		return c.matchInt(int(n.Display))
	case "position":
		return c.matchInt(n.Position)
	case "root":
		return c.matchBool(!n.HasParent())
	case "container":
		return c.matchBool(n.Kind.IsContainer())
	default:
		return false
	}
}

// matchString matches a string field.
func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// matchInt matches an integer field with numeric comparison.
func (c *FilterCondition) matchInt(fieldValue int) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.intVal
	case FilterOpNotEqual:
		return fieldValue != c.intVal
	case FilterOpGreater:
		return fieldValue > c.intVal
	case FilterOpLess:
		return fieldValue < c.intVal
	case FilterOpGreaterEq:
		return fieldValue >= c.intVal
	case FilterOpLessEq:
		return fieldValue <= c.intVal
	default:
		return false
	}
}

// matchBool matches a boolean field.
func (c *FilterCondition) matchBool(fieldValue bool) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.boolVal
	case FilterOpNotEqual:
		return fieldValue != c.boolVal
	default:
		return false
	}
}

// FilterWithExpr filters nodes using a filter expression.
func FilterWithExpr(nodes []model.Node, expr *FilterExpr) []model.Node {
	if expr == nil || len(expr.Conditions) == 0 {
		return nodes
	}

	result := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		if expr.Match(n) {
			result = append(result, n)
		}
	}
	return result
}
