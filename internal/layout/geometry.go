package layout

import "github.com/jmylchreest/notchbar/internal/model"

// Point is a position in layout coordinates. The y axis grows upward.
type Point struct {
	X, Y float64
}

// Size is a width and height.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rect is an axis-aligned rectangle whose origin is its bottom-left corner.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Top returns the y coordinate of the top edge.
func (r Rect) Top() float64 {
	return r.Y + r.Height
}

// Size returns the rectangle's size.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Contains reports whether p lies inside the rectangle. The left and bottom
// edges are inclusive, the right and top edges exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Top()
}

// Inset shrinks the rectangle by the given edges, clamping at zero size.
func (r Rect) Inset(e model.Edges) Rect {
	out := Rect{
		X:      r.X + e.Left,
		Y:      r.Y + e.Bottom,
		Width:  r.Width - e.Horizontal(),
		Height: r.Height - e.Vertical(),
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Outset grows a size by the given edges.
func (s Size) Outset(e model.Edges) Size {
	return Size{Width: s.Width + e.Horizontal(), Height: s.Height + e.Vertical()}
}
