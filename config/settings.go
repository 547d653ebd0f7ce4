package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings holds defaults that a cosmoview.yaml next to the input
// directory may override. Command line flags win over the file.
type Settings struct {
	Mesh struct {
		NeighborRadius     float64 `yaml:"neighbor_radius"`
		MaxNeighbors       int     `yaml:"max_neighbors"`
		MaxCrossNeighbors  int     `yaml:"max_cross_neighbors"`
		BoundaryFactor     float64 `yaml:"boundary_factor"`
		NeighborsThreshold float64 `yaml:"neighbors_threshold"`
		MaxEdgeFactor      float64 `yaml:"max_edge_factor"`
	} `yaml:"mesh"`
	Color struct {
		Scale     string  `yaml:"scale"`
		ColorBy   string  `yaml:"color_by"`
		Robust    bool    `yaml:"robust"`
		RobustPct float64 `yaml:"robust_pct"`
	} `yaml:"color"`
	Render struct {
		Width      int    `yaml:"width"`
		Height     int    `yaml:"height"`
		Background string `yaml:"background"`
	} `yaml:"render"`
}

func DefaultSettings() *Settings {
	s := &Settings{}
	s.Mesh.NeighborRadius = 1.0
	s.Mesh.MaxNeighbors = 15
	s.Mesh.MaxCrossNeighbors = 4
	s.Mesh.BoundaryFactor = 2.0
	s.Mesh.NeighborsThreshold = 1.5
	s.Mesh.MaxEdgeFactor = 4.0
	s.Color.Scale = "viridis"
	s.Color.ColorBy = "charge"
	s.Color.RobustPct = 1.0
	s.Render.Width = 1600
	s.Render.Height = 1200
	s.Render.Background = "white"
	return s
}

// LoadSettings reads a yaml settings file over the defaults. A missing
// file is not an error, a broken one is.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "Failed to read settings %q", path)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse settings %q", path)
	}
	return s, nil
}
