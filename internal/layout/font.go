package layout

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoder for ImageSize
	_ "image/png"  // register decoder for ImageSize
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/jmylchreest/notchbar/internal/model"
)

// Font defaults applied when a node leaves them unset.
const (
	DefaultFontSize   = 13.0
	DefaultFontWeight = model.WeightMedium
	DefaultFontFamily = "sans"
)

// FontSpec describes the font used to measure and draw a run of text.
type FontSpec struct {
	Family string
	Size   float64
	Weight model.Weight
}

// ResolveFont applies the defaults to a node's font properties.
func ResolveFont(n *model.Node, defaults FontSpec) FontSpec {
	f := defaults
	if f.Family == "" {
		f.Family = DefaultFontFamily
	}
	if f.Size <= 0 {
		f.Size = DefaultFontSize
	}
	if f.Weight == 0 {
		f.Weight = DefaultFontWeight
	}
	if n.FontFamily != "" {
		f.Family = n.FontFamily
	}
	if n.FontSize > 0 {
		f.Size = n.FontSize
	}
	if n.FontWeight != "" {
		if w, err := model.ParseWeight(n.FontWeight); err == nil {
			f.Weight = w
		}
	}
	return f
}

// TextMeasurer reports text metrics for a font.
type TextMeasurer interface {
	// Measure returns the advance width of text.
	Measure(text string, f FontSpec) float64
	// LineHeight returns the height of one line of text.
	LineHeight(f FontSpec) float64
}

// ImageMeasurer reports the natural size of an image.
type ImageMeasurer interface {
	ImageSize(path string) (Size, bool)
}

// ImageMeasurerFunc adapts a function to ImageMeasurer.
type ImageMeasurerFunc func(path string) (Size, bool)

// ImageSize calls fn(path).
func (fn ImageMeasurerFunc) ImageSize(path string) (Size, bool) {
	return fn(path)
}

// ImageFileSize decodes the header of a PNG or JPEG file.
func ImageFileSize(path string) (Size, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Size{}, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Size{}, false
	}
	return Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, true
}

type faceKey struct {
	mono   bool
	bold   bool
	medium bool
	size   float64
}

// GoFontMeasurer measures text with the Go font family. Families containing
// "mono" use Go Mono; everything else uses the proportional faces, which a
// font file loaded with LoadFontFile replaces.
type GoFontMeasurer struct {
	mu    sync.Mutex
	fonts map[faceKey]*opentype.Font
	faces map[faceKey]font.Face
	// override replaces every proportional face when set.
	override *opentype.Font
}

// NewGoFontMeasurer returns a measurer backed by the embedded Go fonts.
func NewGoFontMeasurer() *GoFontMeasurer {
	return &GoFontMeasurer{
		fonts: make(map[faceKey]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// LoadFontFile makes the measurer use a TrueType or OpenType file for all
// proportional text.
func (m *GoFontMeasurer) LoadFontFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font file %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.override = f
	clear(m.faces)
	return nil
}

// Measure implements TextMeasurer.
func (m *GoFontMeasurer) Measure(text string, f FontSpec) float64 {
	face := m.face(f)
	if face == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fixedToFloat(font.MeasureString(face, text))
}

// LineHeight implements TextMeasurer.
func (m *GoFontMeasurer) LineHeight(f FontSpec) float64 {
	face := m.face(f)
	if face == nil {
		return f.Size
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics := face.Metrics()
	return fixedToFloat(metrics.Ascent + metrics.Descent)
}

func (m *GoFontMeasurer) face(f FontSpec) font.Face {
	key := faceKey{
		mono:   strings.Contains(strings.ToLower(f.Family), "mono"),
		bold:   f.Weight >= model.WeightSemibold,
		medium: f.Weight == model.WeightMedium,
		size:   f.Size,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if face, ok := m.faces[key]; ok {
		return face
	}

	var (
		parsed *opentype.Font
		err    error
	)
	if m.override != nil && !key.mono {
		parsed = m.override
	} else {
		parsed, err = m.parsed(key)
		if err != nil {
			return nil
		}
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	m.faces[key] = face
	return face
}

// parsed returns the embedded font for a face key. Must be called with the lock held.
func (m *GoFontMeasurer) parsed(key faceKey) (*opentype.Font, error) {
	fontKey := faceKey{mono: key.mono, bold: key.bold, medium: key.medium}
	if f, ok := m.fonts[fontKey]; ok {
		return f, nil
	}

	var data []byte
	switch {
	case key.mono && key.bold:
		data = gomonobold.TTF
	case key.mono:
		data = gomono.TTF
	case key.bold:
		data = gobold.TTF
	case key.medium:
		data = gomedium.TTF
	default:
		data = goregular.TTF
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	m.fonts[fontKey] = f
	return f, nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
