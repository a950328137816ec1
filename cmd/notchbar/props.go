package main

import (
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/notchbar/internal/config"
	"github.com/jmylchreest/notchbar/internal/model"
)

// propertyFlags binds one string flag per node property.
type propertyFlags struct {
	values  map[string]*string // property key -> flag value
	presets []string
}

// flagName converts a property key to its flag spelling.
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// bindPropertyFlags registers the property flags on fs.
func bindPropertyFlags(fs *pflag.FlagSet) *propertyFlags {
	pf := &propertyFlags{values: make(map[string]*string)}
	for _, key := range model.PropertyKeys() {
		pf.values[key] = fs.String(flagName(key), "", "Set the "+key+" property")
	}
	fs.StringSliceVar(&pf.presets, "preset", nil,
		"Apply a property preset from the config file (repeatable)")
	return pf
}

// collect merges presets, key=value assignments and changed flags, in that
// order of precedence from lowest to highest.
func (pf *propertyFlags) collect(fs *pflag.FlagSet, cfg *config.Config, assignments []string) (map[string]string, error) {
	props := make(map[string]string)

	for _, name := range pf.presets {
		preset, ok := cfg.Preset(name)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(cfg.PresetNames(), ", "))
		}
		maps.Copy(props, preset)
	}

	parsed, err := parseAssignments(assignments)
	if err != nil {
		return nil, err
	}
	maps.Copy(props, parsed)

	for key, value := range pf.values {
		if fs.Changed(flagName(key)) {
			props[key] = *value
		}
	}
	return props, nil
}

// parseAssignments parses key=value arguments. Keys may use either the
// property or the flag spelling.
func parseAssignments(args []string) (map[string]string, error) {
	props := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q, expected key=value", arg)
		}
		props[strings.ReplaceAll(key, "-", "_")] = value
	}
	return props, nil
}
