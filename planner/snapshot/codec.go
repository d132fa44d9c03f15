package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/gridpath/planner/grid"
)

// Format selects the encoding of a snapshot.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ErrUnknownFormat is returned for formats other than JSON and YAML.
var ErrUnknownFormat = errors.New("snapshot: unknown format")

// ParseFormat accepts "json", "yaml" and "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForPath picks the format from a file extension. Anything that is
// not .yaml or .yml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Encode writes the snapshot of g to w.
func Encode(w io.Writer, g *grid.Grid, format Format) error {
	s := g.Snapshot()
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Decode reads a snapshot from r and rebuilds the grid.
func Decode(r io.Reader, format Format) (*grid.Grid, error) {
	var s grid.Snapshot
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("%w: %v", grid.ErrMalformedSnapshot, err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("%w: %v", grid.ErrMalformedSnapshot, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return grid.FromSnapshot(s)
}

// SaveFile writes the snapshot of g to path in the format implied by its
// extension.
func SaveFile(path string, g *grid.Grid) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if err := Encode(f, g, FormatForPath(path)); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return f.Close()
}

// LoadFile reads a grid from path. Besides full snapshots it also accepts a
// layout file: a JSON or YAML document with a "rows" list of symbol strings.
func LoadFile(path string) (*grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return Unmarshal(data, FormatForPath(path))
}

// Unmarshal decodes either a full snapshot or a layout document.
func Unmarshal(data []byte, format Format) (*grid.Grid, error) {
	var doc struct {
		grid.Snapshot `yaml:",inline"`
		Rows          []string `json:"rows" yaml:"rows"`
	}
	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, &doc)
	case YAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", grid.ErrMalformedSnapshot, err)
	}

	if len(doc.Rows) > 0 && len(doc.Cells) == 0 {
		return ParseLayout(doc.Rows)
	}
	return grid.FromSnapshot(doc.Snapshot)
}
