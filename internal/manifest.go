package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// BatchManifest is the YAML document driving `fixel batch`: a fixture list
// with optional defaults that sit between the per-entry values and the tool
// config.
type BatchManifest struct {
	OutputDir string          `yaml:"output_dir"`
	Defaults  FixtureDefaults `yaml:"defaults"`
	Fixtures  []FixtureEntry  `yaml:"fixtures"`
}

// FixtureDefaults overrides the tool config for every fixture in the
// manifest unless the entry itself overrides again.
type FixtureDefaults struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Format      string `yaml:"format"`
	Border      *int   `yaml:"border"`
	BorderColor string `yaml:"border_color"`
	FillColor   string `yaml:"fill_color"`
}

// FixtureEntry describes one fixture. Size is humanized ("1MB", "64KiB",
// plain bytes); the format falls back to the name's extension.
type FixtureEntry struct {
	Name        string `yaml:"name"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Size        string `yaml:"size"`
	Format      string `yaml:"format"`
	Border      *int   `yaml:"border"`
	BorderColor string `yaml:"border_color"`
	FillColor   string `yaml:"fill_color"`
}

// BatchItem pairs a resolved generation request with its output path.
type BatchItem struct {
	OutputPath string
	Req        Request
}

// LoadBatchManifest reads and parses a batch manifest file.
func LoadBatchManifest(path string) (*BatchManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m BatchManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if len(m.Fixtures) == 0 {
		return nil, fmt.Errorf("manifest %s lists no fixtures", path)
	}
	return &m, nil
}

// OutputRoot returns the directory fixture paths resolve under: the
// manifest's output_dir, falling back to the config's. Batch sessions are
// recorded under the same root.
func (m *BatchManifest) OutputRoot(cfg *Config) string {
	if m.OutputDir != "" {
		return m.OutputDir
	}
	return cfg.OutputDir
}

// Resolve folds tool config and manifest defaults under each entry and
// returns concrete generation requests. Output paths are relative to the
// manifest's output_dir (falling back to the config's), and may contain
// subdirectories.
func (m *BatchManifest) Resolve(cfg *Config) ([]BatchItem, error) {
	base, err := cfg.Request()
	if err != nil {
		return nil, err
	}

	if m.Defaults.Width != 0 {
		base.Width = m.Defaults.Width
	}
	if m.Defaults.Height != 0 {
		base.Height = m.Defaults.Height
	}
	if m.Defaults.Format != "" {
		f, err := ParseFormat(m.Defaults.Format)
		if err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
		base.Format = f
	}
	if m.Defaults.Border != nil {
		base.Border = *m.Defaults.Border
	}
	if m.Defaults.BorderColor != "" {
		c, err := ParseColor(m.Defaults.BorderColor)
		if err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
		base.BorderColor = c
	}
	if m.Defaults.FillColor != "" {
		c, err := ParseColor(m.Defaults.FillColor)
		if err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
		base.FillColor = c
	}

	outputDir := m.OutputRoot(cfg)

	items := make([]BatchItem, 0, len(m.Fixtures))
	seen := make(map[string]bool, len(m.Fixtures))
	for i, fx := range m.Fixtures {
		if fx.Name == "" {
			return nil, fmt.Errorf("fixture %d: name is required", i+1)
		}
		if seen[fx.Name] {
			return nil, fmt.Errorf("fixture %q listed twice", fx.Name)
		}
		seen[fx.Name] = true
		if fx.Size == "" {
			return nil, fmt.Errorf("fixture %q: size is required", fx.Name)
		}
		size, err := humanize.ParseBytes(fx.Size)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: invalid size %q: %w", fx.Name, fx.Size, err)
		}

		req := base
		req.TargetSize = int64(size)
		if fx.Width != 0 {
			req.Width = fx.Width
		}
		if fx.Height != 0 {
			req.Height = fx.Height
		}
		if fx.Border != nil {
			req.Border = *fx.Border
		}
		if fx.BorderColor != "" {
			c, err := ParseColor(fx.BorderColor)
			if err != nil {
				return nil, fmt.Errorf("fixture %q: %w", fx.Name, err)
			}
			req.BorderColor = c
		}
		if fx.FillColor != "" {
			c, err := ParseColor(fx.FillColor)
			if err != nil {
				return nil, fmt.Errorf("fixture %q: %w", fx.Name, err)
			}
			req.FillColor = c
		}

		switch {
		case fx.Format != "":
			f, err := ParseFormat(fx.Format)
			if err != nil {
				return nil, fmt.Errorf("fixture %q: %w", fx.Name, err)
			}
			req.Format = f
		case filepath.Ext(fx.Name) != "":
			f, err := ParseFormat(filepath.Ext(fx.Name))
			if err != nil {
				return nil, fmt.Errorf("fixture %q: %w", fx.Name, err)
			}
			req.Format = f
		}

		name := fx.Name
		if filepath.Ext(name) == "" {
			name += "." + req.Format.Ext()
		}

		items = append(items, BatchItem{
			OutputPath: filepath.Join(outputDir, name),
			Req:        req,
		})
	}

	return items, nil
}
