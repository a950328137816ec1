package display

import (
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/diamondburned/gotk4/pkg/pangocairo"

	"github.com/jmylchreest/notchbar/internal/layout"
)

// maxMeasureCache bounds the number of cached text widths.
const maxMeasureCache = 4096

type measureKey struct {
	text string
	font layout.FontSpec
}

// PangoMeasurer measures text with the same font stack the renderer draws
// with. It must only be used on the main loop.
type PangoMeasurer struct {
	context *pango.Context
	widths  map[measureKey]float64
	heights map[layout.FontSpec]float64
}

// NewPangoMeasurer creates a measurer on the default cairo font map.
func NewPangoMeasurer() *PangoMeasurer {
	return &PangoMeasurer{
		context: pango.BaseFontMap(pangocairo.FontMapGetDefault()).CreateContext(),
		widths:  make(map[measureKey]float64),
		heights: make(map[layout.FontSpec]float64),
	}
}

// Measure implements layout.TextMeasurer.
func (m *PangoMeasurer) Measure(text string, f layout.FontSpec) float64 {
	key := measureKey{text: text, font: f}
	if w, ok := m.widths[key]; ok {
		return w
	}
	w, _ := m.size(text, f)
	if len(m.widths) >= maxMeasureCache {
		clear(m.widths)
	}
	m.widths[key] = w
	return w
}

// LineHeight implements layout.TextMeasurer.
func (m *PangoMeasurer) LineHeight(f layout.FontSpec) float64 {
	if h, ok := m.heights[f]; ok {
		return h
	}
	_, h := m.size("Ag", f)
	m.heights[f] = h
	return h
}

func (m *PangoMeasurer) size(text string, f layout.FontSpec) (float64, float64) {
	l := pango.NewLayout(m.context)
	l.SetFontDescription(fontDescription(f))
	l.SetText(text)
	w, h := l.Size()
	return float64(w) / float64(pango.SCALE), float64(h) / float64(pango.SCALE)
}
