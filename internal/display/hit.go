package display

import "github.com/jmylchreest/notchbar/internal/layout"

// toLayoutPoint converts widget coordinates (y-down) into layout
// coordinates (y-up) for a layout of the given height.
func toLayoutPoint(x, y, height float64) layout.Point {
	return layout.Point{X: x, Y: height - y}
}

// hoverTarget returns the name of the top-most frame under p that has a
// hover background, or "".
func hoverTarget(l *layout.Layout, p layout.Point) string {
	if l == nil {
		return ""
	}
	f, ok := l.HitTestFunc(p, func(f *layout.Frame) bool {
		return f.Decoration.HoverBackground != ""
	})
	if !ok {
		return ""
	}
	return f.Name
}

// clickTarget returns the frame a click at p is delivered to: the top-most
// frame with a click command, otherwise the top-most frame.
func clickTarget(l *layout.Layout, p layout.Point) (layout.Frame, bool) {
	if l == nil {
		return layout.Frame{}, false
	}
	if f, ok := l.HitTestFunc(p, func(f *layout.Frame) bool { return f.OnClick != "" }); ok {
		return f, true
	}
	return l.HitTest(p)
}
