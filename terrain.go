package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v2"
)

// TerrainFile describes a heightmap grid on disk
type TerrainFile struct {
	Width   int              `yaml:"width"`
	Height  int              `yaml:"height"`
	Spacing float64          `yaml:"spacing"`
	Heights []float64        `yaml:"heights"` // row-major, empty means flat
	Blocked []GridCoordinate `yaml:"blocked"`
	Zones   string           `yaml:"zones"` // GeoJSON file, relative to the terrain file
}

// LoadTerrain reads a terrain description from YAML
func LoadTerrain(path string) (*TerrainFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read terrain: %w", err)
	}

	t := &TerrainFile{Spacing: 1}
	if err := yaml.UnmarshalStrict(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse terrain: %w", err)
	}
	if t.Zones != "" && !filepath.IsAbs(t.Zones) {
		t.Zones = filepath.Join(filepath.Dir(path), t.Zones)
	}
	return t, nil
}

// Vertices expands the heightmap into row-major world positions
func (t *TerrainFile) Vertices() ([]Vector, error) {
	return GridVertices(t.Width, t.Height, t.Spacing, t.Heights)
}

// ObstacleZones returns the blocked cells and the zone file as obstacle zones
func (t *TerrainFile) ObstacleZones() ([]ObstacleZone, error) {
	zones := BlockedCellZones(t.Blocked, t.Spacing)
	if t.Zones == "" {
		return zones, nil
	}

	data, err := os.ReadFile(t.Zones)
	if err != nil {
		return nil, fmt.Errorf("failed to read zones: %w", err)
	}
	parsed, err := ParseObstacleZones(data)
	if err != nil {
		return nil, err
	}
	return append(zones, parsed...), nil
}

// GridVertices lays out width*height vertices spaced evenly on X/Y with Z
// taken from heights. Empty heights give a flat grid.
func GridVertices(width, height int, spacing float64, heights []float64) ([]Vector, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrGridSize, width, height)
	}
	if len(heights) > 0 && len(heights) != width*height {
		return nil, fmt.Errorf("%w: got %d heights for %dx%d", ErrVertexCount, len(heights), width, height)
	}

	vertices := make([]Vector, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*width + col
			vertices[i] = Vector{X: float64(col) * spacing, Y: float64(row) * spacing}
			if len(heights) > 0 {
				vertices[i].Z = heights[i]
			}
		}
	}
	return vertices, nil
}
