// Package gridio reads and writes the serialized forms of layouts and grid
// configurations.
//
// A layout is persisted as a JSON array of items; a configuration as a JSON
// object. These are the exact shapes exchanged with hosts and persistence
// backends, so import → export round-trips are byte-stable apart from
// indentation.
package gridio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cardgrid/pkg/grid"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout converts a layout to indented JSON bytes.
func MarshalLayout(items []grid.Item) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeLayoutTo(items, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteLayout writes a layout as JSON to an io.Writer.
func WriteLayout(items []grid.Item, w io.Writer) error {
	return writeLayoutTo(items, w)
}

// WriteLayoutFile writes a layout to a JSON file.
// The file is created with 0644 permissions.
func WriteLayoutFile(items []grid.Item, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeLayoutTo(items, f)
}

// ReadLayout decodes a JSON layout from an io.Reader.
func ReadLayout(r io.Reader) ([]grid.Item, error) {
	var items []grid.Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return items, nil
}

// ReadLayoutFile reads a JSON file and returns the decoded layout.
func ReadLayoutFile(path string) ([]grid.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}

func writeLayoutTo(items []grid.Item, w io.Writer) error {
	if items == nil {
		items = []grid.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// =============================================================================
// Config Serialization API
// =============================================================================

// MarshalConfig converts a grid config to indented JSON bytes.
func MarshalConfig(cfg grid.Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// ReadConfig decodes a JSON grid config from an io.Reader and validates it.
func ReadConfig(r io.Reader) (grid.Config, error) {
	var cfg grid.Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return grid.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return grid.Config{}, err
	}
	return cfg, nil
}

// ReadConfigFile reads a JSON file and returns the validated config.
func ReadConfigFile(path string) (grid.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return grid.Config{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadConfig(f)
}
