package reconcile

import (
	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/notch"
)

// Placement positions slot windows along the top edge of a display.
type Placement struct {
	// OffsetTop is the distance between the display's top edge and the
	// top of every window.
	OffsetTop float64
}

// Place returns the frame of a window of the given size in display-local
// y-up coordinates. Center windows are centered horizontally; left windows
// end at the notch's left edge and right windows start at its right edge.
func (p Placement) Place(d DisplayInfo, a notch.Alignment, size layout.Size) layout.Rect {
	x := (d.Width - size.Width) / 2
	if d.Notch != nil {
		switch a {
		case notch.Left:
			x = d.Notch.X - size.Width
		case notch.Right:
			x = d.Notch.Right()
		}
	}

	return layout.Rect{
		X:      max(x, 0),
		Y:      d.Height - p.OffsetTop - size.Height,
		Width:  size.Width,
		Height: size.Height,
	}
}

// TopMargin returns the distance from the top edge of d to the top of frame,
// which is the top margin of a window anchored to the display's top edge.
func TopMargin(d DisplayInfo, frame layout.Rect) float64 {
	return d.Height - frame.Top()
}
