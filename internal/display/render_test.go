package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/notchbar/internal/layout"
)

func TestScreenRect(t *testing.T) {
	r := layout.Rect{X: 4, Y: 2, Width: 10, Height: 6}
	assert.Equal(t, layout.Rect{X: 4, Y: 12, Width: 10, Height: 6}, screenRect(r, 20))
	assert.Equal(t, layout.Rect{Width: 20, Height: 20}, screenRect(layout.Rect{Width: 20, Height: 20}, 20))
}

func TestParseColor(t *testing.T) {
	c, ok := parseColor("#FF000080")
	assert.True(t, ok)
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 128.0/255, c.A, 1e-9)

	_, ok = parseColor("")
	assert.False(t, ok)
	_, ok = parseColor("red")
	assert.False(t, ok)
}

func TestShadowRings(t *testing.T) {
	outsets, alphas := shadowRings(4, 0.5)
	assert.Equal(t, []float64{4, 3, 2, 1}, outsets)
	assert.Len(t, alphas, 4)
	for _, a := range alphas {
		assert.InDelta(t, 0.1, a, 1e-9)
	}

	outsets, _ = shadowRings(40, 1)
	assert.Len(t, outsets, maxShadowSteps)
	assert.Equal(t, 40.0, outsets[0])

	outsets, alphas = shadowRings(0, 1)
	assert.Nil(t, outsets)
	assert.Nil(t, alphas)
}
