package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notchbar/internal/layout"
)

func testLayout() *layout.Layout {
	return &layout.Layout{
		Size: layout.Size{Width: 100, Height: 20},
		Frames: []layout.Frame{
			{Name: "row", Rect: layout.Rect{Width: 100, Height: 20}, OnClick: "echo row"},
			{Name: "clock", Depth: 1, Rect: layout.Rect{X: 0, Y: 0, Width: 50, Height: 20},
				Decoration: layout.Decoration{HoverBackground: "#FFFFFF20"}},
			{Name: "battery", Depth: 1, Rect: layout.Rect{X: 50, Y: 0, Width: 50, Height: 20}},
		},
	}
}

func TestToLayoutPoint(t *testing.T) {
	assert.Equal(t, layout.Point{X: 10, Y: 15}, toLayoutPoint(10, 5, 20))
	assert.Equal(t, layout.Point{X: 0, Y: 20}, toLayoutPoint(0, 0, 20))
}

func TestHoverTarget(t *testing.T) {
	l := testLayout()
	assert.Equal(t, "clock", hoverTarget(l, layout.Point{X: 10, Y: 10}))
	assert.Empty(t, hoverTarget(l, layout.Point{X: 60, Y: 10}))
	assert.Empty(t, hoverTarget(l, layout.Point{X: 200, Y: 10}))
	assert.Empty(t, hoverTarget(nil, layout.Point{}))
}

func TestClickTarget(t *testing.T) {
	l := testLayout()

	// Children without a command defer to the nearest frame that has one.
	f, ok := clickTarget(l, layout.Point{X: 60, Y: 10})
	require.True(t, ok)
	assert.Equal(t, "row", f.Name)

	l.Frames[2].OnClick = "echo battery"
	f, ok = clickTarget(l, layout.Point{X: 60, Y: 10})
	require.True(t, ok)
	assert.Equal(t, "battery", f.Name)

	l.Frames[0].OnClick = ""
	f, ok = clickTarget(l, layout.Point{X: 10, Y: 10})
	require.True(t, ok)
	assert.Equal(t, "clock", f.Name)

	_, ok = clickTarget(l, layout.Point{X: 150, Y: 10})
	assert.False(t, ok)
	_, ok = clickTarget(nil, layout.Point{})
	assert.False(t, ok)
}
