// Package model defines the widget node types shared by the store, the layout
// engine and the command transport.
package model

import (
	"fmt"
	"math"
)

// DisplayID identifies a physical display.
type DisplayID uint32

// String returns the decimal form of the display id.
func (d DisplayID) String() string {
	return fmt.Sprintf("%d", uint32(d))
}

// Kind is the structural type of a node.
type Kind string

const (
	KindItem   Kind = "item"
	KindRow    Kind = "row"
	KindColumn Kind = "column"
	KindBox    Kind = "box"
)

// ValidKinds returns all valid node kinds.
func ValidKinds() []Kind {
	return []Kind{KindItem, KindRow, KindColumn, KindBox}
}

// IsContainer reports whether nodes of this kind may have children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindRow, KindColumn, KindBox:
		return true
	default:
		return false
	}
}

// ParseKind parses a kind name. The empty string yields KindItem.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindItem, nil
	}
	for _, k := range ValidKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("invalid type %q, must be one of: %v", s, ValidKinds())
}

// Alignment positions children along a layout axis.
type Alignment string

const (
	AlignStart  Alignment = "start"
	AlignCenter Alignment = "center"
	AlignEnd    Alignment = "end"
)

// ParseAlignment parses an alignment name. The empty string yields AlignStart.
func ParseAlignment(s string) (Alignment, error) {
	switch Alignment(s) {
	case "", AlignStart:
		return AlignStart, nil
	case AlignCenter:
		return AlignCenter, nil
	case AlignEnd:
		return AlignEnd, nil
	}
	return "", fmt.Errorf("invalid alignment %q, must be one of: start, center, end", s)
}

// NotchSide selects which side of a display notch a top-level node is placed on.
type NotchSide string

const (
	NotchLeft  NotchSide = "left"
	NotchRight NotchSide = "right"
)

// ParseNotchSide parses a notch side. The empty string means unset (right).
func ParseNotchSide(s string) (NotchSide, error) {
	switch NotchSide(s) {
	case "":
		return "", nil
	case NotchLeft, NotchRight:
		return NotchSide(s), nil
	}
	return "", fmt.Errorf("invalid notch_align %q, must be left or right", s)
}

// Edges holds per-side spacing values.
type Edges struct {
	Top    float64 `json:"top,omitempty" yaml:"top,omitempty"`
	Right  float64 `json:"right,omitempty" yaml:"right,omitempty"`
	Bottom float64 `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Left   float64 `json:"left,omitempty" yaml:"left,omitempty"`
}

// Horizontal returns the sum of the left and right edges.
func (e Edges) Horizontal() float64 {
	return e.Left + e.Right
}

// Vertical returns the sum of the top and bottom edges.
func (e Edges) Vertical() float64 {
	return e.Top + e.Bottom
}

// Style holds the box-model and decoration properties of a node.
type Style struct {
	Margin          Edges     `json:"margin,omitzero" yaml:"margin,omitempty"`
	Padding         Edges     `json:"padding,omitzero" yaml:"padding,omitempty"`
	Gap             float64   `json:"gap,omitempty" yaml:"gap,omitempty"`
	Width           *float64  `json:"width,omitempty" yaml:"width,omitempty"`
	Height          *float64  `json:"height,omitempty" yaml:"height,omitempty"`
	CornerRadius    float64   `json:"corner_radius,omitempty" yaml:"corner_radius,omitempty"`
	BorderWidth     float64   `json:"border_width,omitempty" yaml:"border_width,omitempty"`
	BorderColor     string    `json:"border_color,omitempty" yaml:"border_color,omitempty"`
	Background      string    `json:"background_color,omitempty" yaml:"background_color,omitempty"`
	HoverBackground string    `json:"hover_background_color,omitempty" yaml:"hover_background_color,omitempty"`
	ShadowColor     string    `json:"shadow_color,omitempty" yaml:"shadow_color,omitempty"`
	ShadowRadius    float64   `json:"shadow_radius,omitempty" yaml:"shadow_radius,omitempty"`
	AlignItems      Alignment `json:"align_items,omitempty" yaml:"align_items,omitempty"`
	JustifyContent  Alignment `json:"justify_content,omitempty" yaml:"justify_content,omitempty"`
	NotchAlign      NotchSide `json:"notch_align,omitempty" yaml:"notch_align,omitempty"`
}

// Node is a single styled widget. Nodes reference their parent by name and
// are assembled into a tree at layout time.
type Node struct {
	Name     string    `json:"name" yaml:"name"`
	Kind     Kind      `json:"type" yaml:"type"`
	Parent   string    `json:"parent,omitempty" yaml:"parent,omitempty"`
	Position int       `json:"position" yaml:"position"`
	Display  DisplayID `json:"display" yaml:"display"`
	Style    Style     `json:"style,omitzero" yaml:"style,omitempty"`

	Label      string  `json:"label,omitempty" yaml:"label,omitempty"`
	LabelColor string  `json:"label_color,omitempty" yaml:"label_color,omitempty"`
	Icon       string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	IconColor  string  `json:"icon_color,omitempty" yaml:"icon_color,omitempty"`
	Image      string  `json:"image,omitempty" yaml:"image,omitempty"`
	ImageScale float64 `json:"image_scale,omitempty" yaml:"image_scale,omitempty"`
	FontSize   float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	FontFamily string  `json:"font_family,omitempty" yaml:"font_family,omitempty"`
	FontWeight string  `json:"font_weight,omitempty" yaml:"font_weight,omitempty"`
	OnClick    string  `json:"on_click,omitempty" yaml:"on_click,omitempty"`
}

// NewNode returns an item node with the given name on the given display.
func NewNode(name string, display DisplayID) Node {
	return Node{
		Name:    name,
		Kind:    KindItem,
		Display: display,
	}
}

// HasParent reports whether the node declares a parent.
func (n *Node) HasParent() bool {
	return n.Parent != ""
}

// Validate checks the structural fields of a node.
func (n *Node) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("node name must not be empty")
	}
	if n.Parent == n.Name {
		return fmt.Errorf("node %q cannot be its own parent", n.Name)
	}
	if _, err := ParseKind(string(n.Kind)); err != nil {
		return err
	}
	if n.FontWeight != "" {
		if _, err := ParseWeight(n.FontWeight); err != nil {
			return err
		}
	}
	for _, c := range []string{
		n.LabelColor, n.IconColor, n.Style.Background, n.Style.HoverBackground,
		n.Style.BorderColor, n.Style.ShadowColor,
	} {
		if c == "" {
			continue
		}
		if _, err := ParseColor(c); err != nil {
			return err
		}
	}
	if _, err := ParseAlignment(string(n.Style.AlignItems)); err != nil {
		return err
	}
	if _, err := ParseAlignment(string(n.Style.JustifyContent)); err != nil {
		return err
	}
	if _, err := ParseNotchSide(string(n.Style.NotchAlign)); err != nil {
		return err
	}
	return n.validateSizes()
}

type sizeField struct {
	key string
	v   float64
}

// validateSizes rejects negative or non-finite sizes.
func (n *Node) validateSizes() error {
	sizes := []sizeField{
		{"margin_top", n.Style.Margin.Top},
		{"margin_right", n.Style.Margin.Right},
		{"margin_bottom", n.Style.Margin.Bottom},
		{"margin_left", n.Style.Margin.Left},
		{"padding_top", n.Style.Padding.Top},
		{"padding_right", n.Style.Padding.Right},
		{"padding_bottom", n.Style.Padding.Bottom},
		{"padding_left", n.Style.Padding.Left},
		{"gap", n.Style.Gap},
		{"corner_radius", n.Style.CornerRadius},
		{"border_width", n.Style.BorderWidth},
		{"shadow_radius", n.Style.ShadowRadius},
		{"image_scale", n.ImageScale},
		{"font_size", n.FontSize},
	}
	if n.Style.Width != nil {
		sizes = append(sizes, sizeField{"width", *n.Style.Width})
	}
	if n.Style.Height != nil {
		sizes = append(sizes, sizeField{"height", *n.Style.Height})
	}
	for _, s := range sizes {
		if err := checkSize(s.v); err != nil {
			return fmt.Errorf("node %q: %s %v", n.Name, s.key, err)
		}
	}
	return nil
}

func checkSize(v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("must be a finite number")
	case v < 0:
		return fmt.Errorf("must not be negative")
	}
	return nil
}
