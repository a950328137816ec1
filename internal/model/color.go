package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RGBA is a color with components in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// ParseColor parses a "#RRGGBB" or "#RRGGBBAA" hex color.
func ParseColor(s string) (RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return RGBA{}, fmt.Errorf("invalid color %q, must be #RRGGBB or #RRGGBBAA", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return RGBA{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// Weight is a font weight on the CSS 100-900 scale.
type Weight int

const (
	WeightUltraLight Weight = 100
	WeightThin       Weight = 200
	WeightLight      Weight = 300
	WeightRegular    Weight = 400
	WeightMedium     Weight = 500
	WeightSemibold   Weight = 600
	WeightBold       Weight = 700
	WeightHeavy      Weight = 800
	WeightBlack      Weight = 900
)

var weightNames = map[string]Weight{
	"ultralight": WeightUltraLight,
	"thin":       WeightThin,
	"light":      WeightLight,
	"regular":    WeightRegular,
	"normal":     WeightRegular,
	"medium":     WeightMedium,
	"semibold":   WeightSemibold,
	"bold":       WeightBold,
	"heavy":      WeightHeavy,
	"black":      WeightBlack,
}

// ParseWeight parses a font weight name such as "medium" or "bold".
func ParseWeight(s string) (Weight, error) {
	if w, ok := weightNames[strings.ToLower(s)]; ok {
		return w, nil
	}
	return 0, fmt.Errorf("invalid font_weight %q", s)
}
