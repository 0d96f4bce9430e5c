// Package config loads viewing-geometry configuration for the
// decomposition tools.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/insar.report/internal/insar"
)

// maxConfigFileSize bounds geometry config reads; these files are a few
// hundred bytes in practice.
const maxConfigFileSize = 1 << 20

// Track describes one viewing geometry: the satellite flight azimuth and
// radar incidence angle, in degrees as they appear in scene metadata.
// Fields are pointers so partial configs fail loudly instead of silently
// defaulting an angle to zero.
type Track struct {
	Name         string   `json:"name"`
	AzimuthDeg   *float64 `json:"azimuth_deg"`
	IncidenceDeg *float64 `json:"incidence_deg"`
}

// GeometryConfig is the root of the geometry JSON file: the ordered list of
// tracks whose LOS vectors form the design matrix rows. Track order defines
// observation column order in the tools.
type GeometryConfig struct {
	Tracks []Track `json:"tracks"`
}

// LoadGeometryConfig reads and validates a geometry JSON file.
func LoadGeometryConfig(path string) (*GeometryConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("geometry config must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat geometry config: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("geometry config too large: %d bytes", info.Size())
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read geometry config: %w", err)
	}

	var cfg GeometryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse geometry config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *GeometryConfig) validate() error {
	if len(c.Tracks) == 0 {
		return fmt.Errorf("geometry config has no tracks")
	}
	for i, tr := range c.Tracks {
		if tr.AzimuthDeg == nil {
			return fmt.Errorf("track %d (%s): azimuth_deg missing", i, tr.Name)
		}
		if tr.IncidenceDeg == nil {
			return fmt.Errorf("track %d (%s): incidence_deg missing", i, tr.Name)
		}
		if *tr.IncidenceDeg <= 0 || *tr.IncidenceDeg >= 90 {
			return fmt.Errorf("track %d (%s): incidence_deg %v outside (0, 90)", i, tr.Name, *tr.IncidenceDeg)
		}
	}
	return nil
}

// LOSVectors computes the LOS unit vector of each track, in track order.
func (c *GeometryConfig) LOSVectors() []insar.LOSVector {
	out := make([]insar.LOSVector, len(c.Tracks))
	for i, tr := range c.Tracks {
		out[i] = insar.ComputeLOS(*tr.AzimuthDeg*math.Pi/180, *tr.IncidenceDeg*math.Pi/180)
	}
	return out
}
