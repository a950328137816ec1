package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/notchbar/internal/model"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "16ms", "1s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Try parsing as integer (milliseconds)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '16ms', '1s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for notchbard.
// Loaded from ~/.config/notchbar/notchbard.toml
type DaemonConfig struct {
	Bar     BarConfig     `toml:"bar"`
	Font    FontConfig    `toml:"font"`
	Notches []NotchConfig `toml:"notch"`
	Notify  NotifyConfig  `toml:"notify"`
}

// NotifyConfig controls desktop notifications about daemon events.
type NotifyConfig struct {
	Enabled bool `toml:"enabled"` // Report config reloads and errors
}

// BarConfig contains window placement and reconciliation settings.
type BarConfig struct {
	Debounce  Duration `toml:"debounce"`   // Coalescing interval for node updates
	Gap       float64  `toml:"gap"`        // Spacing between top-level nodes in a window
	OffsetTop float64  `toml:"offset_top"` // Distance from the top edge of the display
	Layer     string   `toml:"layer"`      // "top" or "overlay"
	Namespace string   `toml:"namespace"`  // Layer-shell namespace
}

// FontConfig contains the default font and text measurement settings.
type FontConfig struct {
	Family   string  `toml:"family"`
	Size     float64 `toml:"size"`
	Weight   string  `toml:"weight"`
	Measurer string  `toml:"measurer"` // "pango" or "builtin"
	File     string  `toml:"file"`     // Font file for the builtin measurer
}

// NotchConfig describes the notch of a display, matched by connector name.
type NotchConfig struct {
	Connector string  `toml:"connector"` // e.g. "eDP-1"
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	Offset    float64 `toml:"offset"` // Horizontal shift from the display center
}

// Layer is the layer-shell layer bar windows are placed on.
type Layer string

const (
	LayerTop     Layer = "top"
	LayerOverlay Layer = "overlay"
)

// ValidLayers returns all valid layer values.
func ValidLayers() []Layer {
	return []Layer{LayerTop, LayerOverlay}
}

// Measurer selects how text is measured for layout.
type Measurer string

const (
	MeasurerPango   Measurer = "pango"
	MeasurerBuiltin Measurer = "builtin"
)

// ValidMeasurers returns all valid measurer values.
func ValidMeasurers() []Measurer {
	return []Measurer{MeasurerPango, MeasurerBuiltin}
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Bar: BarConfig{
			Debounce:  Duration(16 * time.Millisecond),
			Gap:       0,
			OffsetTop: 0,
			Layer:     string(LayerTop),
			Namespace: "notchbar",
		},
		Font: FontConfig{
			Family:   "sans",
			Size:     13,
			Weight:   "medium",
			Measurer: string(MeasurerPango),
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "notchbar", "notchbard.toml"), nil
}

// LoadDaemonConfig loads the daemon configuration from path, or from the
// default location when path is empty. If the file doesn't exist, returns
// the default configuration.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		var err error
		path, err = DaemonConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if c.Bar.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Bar.Debounce.Duration())
	}
	if c.Bar.Gap < 0 {
		return fmt.Errorf("gap must not be negative, got %g", c.Bar.Gap)
	}
	if c.Bar.OffsetTop < 0 {
		return fmt.Errorf("offset_top must not be negative, got %g", c.Bar.OffsetTop)
	}

	validLayer := false
	for _, l := range ValidLayers() {
		if c.Bar.Layer == string(l) {
			validLayer = true
			break
		}
	}
	if !validLayer {
		return fmt.Errorf("invalid layer %q, must be one of: %v", c.Bar.Layer, ValidLayers())
	}

	validMeasurer := false
	for _, m := range ValidMeasurers() {
		if c.Font.Measurer == string(m) {
			validMeasurer = true
			break
		}
	}
	if !validMeasurer {
		return fmt.Errorf("invalid measurer %q, must be one of: %v", c.Font.Measurer, ValidMeasurers())
	}

	if c.Font.Size <= 0 || c.Font.Size > 200 {
		return fmt.Errorf("font size must be between 0 and 200, got %g", c.Font.Size)
	}
	if _, err := model.ParseWeight(c.Font.Weight); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for i, n := range c.Notches {
		if n.Connector == "" {
			return fmt.Errorf("notch %d: connector must be set", i)
		}
		if seen[n.Connector] {
			return fmt.Errorf("notch %d: duplicate connector %q", i, n.Connector)
		}
		seen[n.Connector] = true
		if n.Width <= 0 || n.Height <= 0 {
			return fmt.Errorf("notch %q: width and height must be positive", n.Connector)
		}
	}

	return nil
}

// NotchFor returns the notch configured for a connector.
func (c *DaemonConfig) NotchFor(connector string) (NotchConfig, bool) {
	for _, n := range c.Notches {
		if n.Connector == connector {
			return n, true
		}
	}
	return NotchConfig{}, false
}
