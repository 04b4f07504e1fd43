package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"skylapse/internal/faults"
	"skylapse/internal/series"
)

// Manifest describes one dataset: what was measured, where, and which data
// file holds the observations. Paths are resolved relative to the manifest.
type Manifest struct {
	SourceID string `yaml:"source_id"`
	Variable string `yaml:"variable"`
	Units    string `yaml:"units"`
	Extent   struct {
		MinLat float64 `yaml:"min_lat"`
		MinLon float64 `yaml:"min_lon"`
		MaxLat float64 `yaml:"max_lat"`
		MaxLon float64 `yaml:"max_lon"`
	} `yaml:"extent"`
	// Data points at a CSV (timestamp,value pairs) or JSON (gridded) file.
	Data string `yaml:"data"`
	// Grid sets the raster shape scalar CSV observations are expanded to.
	// Zero values default to a single cell.
	Grid struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"grid"`
}

// LoadManifest reads and validates a dataset manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "manifest",
			fmt.Sprintf("read %s", path), err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "manifest",
			fmt.Sprintf("parse %s", path), err)
	}
	if strings.TrimSpace(manifest.SourceID) == "" {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "manifest",
			"source_id is required", nil)
	}
	if strings.TrimSpace(manifest.Data) == "" {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "manifest",
			"data file is required", nil)
	}
	if !filepath.IsAbs(manifest.Data) {
		manifest.Data = filepath.Join(filepath.Dir(path), manifest.Data)
	}
	if manifest.Grid.Width == 0 {
		manifest.Grid.Width = 1
	}
	if manifest.Grid.Height == 0 {
		manifest.Grid.Height = 1
	}
	if manifest.Grid.Width < 0 || manifest.Grid.Height < 0 {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "manifest",
			fmt.Sprintf("grid shape %dx%d is invalid", manifest.Grid.Width, manifest.Grid.Height), nil)
	}
	return &manifest, nil
}

func (m *Manifest) metadata() series.Metadata {
	return series.Metadata{
		SourceID: m.SourceID,
		Variable: m.Variable,
		Units:    m.Units,
		Extent: series.Extent{
			MinLat: m.Extent.MinLat,
			MinLon: m.Extent.MinLon,
			MaxLat: m.Extent.MaxLat,
			MaxLon: m.Extent.MaxLon,
		},
	}
}

// Load reads a manifest and its data file into a validated series. The data
// format is chosen by file extension: .csv for scalar observations, .json
// for gridded ones.
func Load(manifestPath string) (*series.Series, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(manifest.Data)) {
	case ".csv":
		return loadCSV(manifest)
	case ".json":
		return loadJSON(manifest)
	default:
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "load",
			fmt.Sprintf("unsupported data format %q", filepath.Ext(manifest.Data)), nil)
	}
}
