package model

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// PropertyError reports a property that could not be applied to a node.
type PropertyError struct {
	Key   string
	Value string
	Err   error
}

func (e *PropertyError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("property %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("property %q=%q: %v", e.Key, e.Value, e.Err)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// ErrUnknownProperty is wrapped by PropertyError for keys outside the vocabulary.
var ErrUnknownProperty = errors.New("unknown property")

type setter func(n *Node, v string) error

type property struct {
	key string
	set setter
}

// properties lists the property vocabulary in application order. Shorthands
// come before the per-side keys they expand to so the specific keys win.
var properties = []property{
	{"type", func(n *Node, v string) (err error) { n.Kind, err = ParseKind(v); return }},
	{"parent", func(n *Node, v string) error { n.Parent = v; return nil }},
	{"position", func(n *Node, v string) (err error) { n.Position, err = parseInt(v); return }},
	{"display", func(n *Node, v string) error {
		id, err := parseInt(v)
		if err != nil {
			return err
		}
		if id < 0 {
			return errors.New("must not be negative")
		}
		n.Display = DisplayID(id)
		return nil
	}},
	{"label", func(n *Node, v string) error { n.Label = v; return nil }},
	{"label_color", colorSetter(func(n *Node) *string { return &n.LabelColor })},
	{"icon", func(n *Node, v string) error { n.Icon = v; return nil }},
	{"icon_color", colorSetter(func(n *Node) *string { return &n.IconColor })},
	{"image", func(n *Node, v string) error { n.Image = v; return nil }},
	{"image_scale", floatSetter(func(n *Node) *float64 { return &n.ImageScale })},
	{"font_size", floatSetter(func(n *Node) *float64 { return &n.FontSize })},
	{"font_family", func(n *Node, v string) error { n.FontFamily = v; return nil }},
	{"font_weight", func(n *Node, v string) error {
		if v != "" {
			if _, err := ParseWeight(v); err != nil {
				return err
			}
		}
		n.FontWeight = v
		return nil
	}},
	{"background_color", colorSetter(func(n *Node) *string { return &n.Style.Background })},
	{"hover_background_color", colorSetter(func(n *Node) *string { return &n.Style.HoverBackground })},
	{"border_color", colorSetter(func(n *Node) *string { return &n.Style.BorderColor })},
	{"border_width", floatSetter(func(n *Node) *float64 { return &n.Style.BorderWidth })},
	{"corner_radius", floatSetter(func(n *Node) *float64 { return &n.Style.CornerRadius })},
	{"shadow_color", colorSetter(func(n *Node) *string { return &n.Style.ShadowColor })},
	{"shadow_radius", floatSetter(func(n *Node) *float64 { return &n.Style.ShadowRadius })},
	{"padding", edgeSetter(func(n *Node) *Edges { return &n.Style.Padding }, allSides)},
	{"padding_horizontal", edgeSetter(func(n *Node) *Edges { return &n.Style.Padding }, horizontalSides)},
	{"padding_vertical", edgeSetter(func(n *Node) *Edges { return &n.Style.Padding }, verticalSides)},
	{"padding_top", edgeSetter(func(n *Node) *Edges { return &n.Style.Padding }, topSide)},
	{"padding_right", edgeSetter(func(n *Node) *Edges { return &n.Style.Padding }, rightSide)},
	{"padding_bottom", edgeSetter(func(n *Node) *Edges { return &n.Style.Padding }, bottomSide)},
	{"padding_left", edgeSetter(func(n *Node) *Edges { return &n.Style.Padding }, leftSide)},
	{"margin", edgeSetter(func(n *Node) *Edges { return &n.Style.Margin }, allSides)},
	{"margin_horizontal", edgeSetter(func(n *Node) *Edges { return &n.Style.Margin }, horizontalSides)},
	{"margin_vertical", edgeSetter(func(n *Node) *Edges { return &n.Style.Margin }, verticalSides)},
	{"margin_top", edgeSetter(func(n *Node) *Edges { return &n.Style.Margin }, topSide)},
	{"margin_right", edgeSetter(func(n *Node) *Edges { return &n.Style.Margin }, rightSide)},
	{"margin_bottom", edgeSetter(func(n *Node) *Edges { return &n.Style.Margin }, bottomSide)},
	{"margin_left", edgeSetter(func(n *Node) *Edges { return &n.Style.Margin }, leftSide)},
	{"gap", floatSetter(func(n *Node) *float64 { return &n.Style.Gap })},
	{"width", optionalSetter(func(n *Node) **float64 { return &n.Style.Width })},
	{"height", optionalSetter(func(n *Node) **float64 { return &n.Style.Height })},
	{"align_items", func(n *Node, v string) (err error) { n.Style.AlignItems, err = ParseAlignment(v); return }},
	{"justify_content", func(n *Node, v string) (err error) { n.Style.JustifyContent, err = ParseAlignment(v); return }},
	{"notch_align", func(n *Node, v string) (err error) { n.Style.NotchAlign, err = ParseNotchSide(v); return }},
	{"on_click", func(n *Node, v string) error { n.OnClick = v; return nil }},
}

// PropertyKeys returns the property vocabulary in application order.
func PropertyKeys() []string {
	keys := make([]string, len(properties))
	for i, p := range properties {
		keys[i] = p.key
	}
	return keys
}

// ApplyProperties applies a string property map to a node. An empty value
// clears the property. Either every property is applied or, on error, the
// node is left untouched.
func ApplyProperties(n *Node, props map[string]string) error {
	for key := range props {
		if !slices.ContainsFunc(properties, func(p property) bool { return p.key == key }) {
			return &PropertyError{Key: key, Err: ErrUnknownProperty}
		}
	}

	updated := *n
	for _, p := range properties {
		v, ok := props[p.key]
		if !ok {
			continue
		}
		if err := p.set(&updated, v); err != nil {
			return &PropertyError{Key: p.key, Value: v, Err: err}
		}
	}
	*n = updated
	return nil
}

func parseInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func parseFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if err := checkSize(f); err != nil {
		return 0, err
	}
	return f, nil
}

func floatSetter(field func(n *Node) *float64) setter {
	return func(n *Node, v string) error {
		f, err := parseFloat(v)
		if err != nil {
			return err
		}
		*field(n) = f
		return nil
	}
}

func optionalSetter(field func(n *Node) **float64) setter {
	return func(n *Node, v string) error {
		if v == "" {
			*field(n) = nil
			return nil
		}
		f, err := parseFloat(v)
		if err != nil {
			return err
		}
		*field(n) = &f
		return nil
	}
}

func colorSetter(field func(n *Node) *string) setter {
	return func(n *Node, v string) error {
		if v != "" {
			if _, err := ParseColor(v); err != nil {
				return err
			}
		}
		*field(n) = v
		return nil
	}
}

type side int

const (
	topSide side = 1 << iota
	rightSide
	bottomSide
	leftSide

	horizontalSides = leftSide | rightSide
	verticalSides   = topSide | bottomSide
	allSides        = horizontalSides | verticalSides
)

func edgeSetter(field func(n *Node) *Edges, sides side) setter {
	return func(n *Node, v string) error {
		f, err := parseFloat(v)
		if err != nil {
			return err
		}
		e := field(n)
		if sides&topSide != 0 {
			e.Top = f
		}
		if sides&rightSide != 0 {
			e.Right = f
		}
		if sides&bottomSide != 0 {
			e.Bottom = f
		}
		if sides&leftSide != 0 {
			e.Left = f
		}
		return nil
	}
}
