// Package trace loads recorded input sequences and replays them through a
// surface.
package trace

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mobile-next/touchsweep/input"
	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

// Format is the encoding of a trace file.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatPlist Format = "plist"
)

// Trace is a recorded sequence of native events for one surface.
type Trace struct {
	Name      string         `json:"name" yaml:"name" plist:"name"`
	Threshold float64        `json:"threshold,omitempty" yaml:"threshold,omitempty" plist:"threshold,omitempty"`
	Data      map[string]any `json:"data,omitempty" yaml:"data,omitempty" plist:"data,omitempty"`
	Events    []input.Raw    `json:"events" yaml:"events" plist:"events"`
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".plist":
		return FormatPlist, nil
	default:
		return "", fmt.Errorf("unsupported trace file extension: %q", filepath.Ext(path))
	}
}

// Load reads and parses a trace file. A trace without a name is named after
// the file.
func Load(path string) (*Trace, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	t, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return t, nil
}

// Parse decodes a trace in the given format.
func Parse(data []byte, format Format) (*Trace, error) {
	var t Trace
	var err error

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &t)
	case FormatYAML:
		err = yaml.Unmarshal(data, &t)
	case FormatPlist:
		_, err = plist.Unmarshal(data, &t)
	default:
		return nil, fmt.Errorf("unsupported trace format: %q", format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse %s trace: %w", format, err)
	}

	if t.Threshold < 0 || math.IsNaN(t.Threshold) || math.IsInf(t.Threshold, 0) {
		return nil, fmt.Errorf("threshold must be a non-negative number, got %v", t.Threshold)
	}

	return &t, nil
}

// Marshal encodes a trace in the given format.
func Marshal(t *Trace, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(t, "", "  ")
	case FormatYAML:
		return yaml.Marshal(t)
	case FormatPlist:
		return plist.MarshalIndent(t, plist.XMLFormat, "\t")
	default:
		return nil, fmt.Errorf("unsupported trace format: %q", format)
	}
}
