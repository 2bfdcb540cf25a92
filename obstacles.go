package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// ObstacleZone is a planar polygon that agents may not stand inside
type ObstacleZone struct {
	Name    string
	Polygon orb.Polygon
}

// Contains reports whether the position falls inside the zone on the ground plane
func (z ObstacleZone) Contains(position Vector) bool {
	return planar.PolygonContains(z.Polygon, position.Planar())
}

// LoadObstacleZones loads all GeoJSON files from a directory
func LoadObstacleZones(dir string) ([]ObstacleZone, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, err
	}

	log.Printf("Loading obstacle zones from %d GeoJSON files...\n", len(files))

	var zones []ObstacleZone
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		parsed, err := ParseObstacleZones(data)
		if err != nil {
			log.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}

		zones = append(zones, parsed...)
		log.Printf("   ✅ Loaded %d zones from %s\n", len(parsed), filepath.Base(file))
	}

	log.Printf("Total obstacle zones loaded: %d\n", len(zones))
	return zones, nil
}

// ParseObstacleZones reads Polygon and MultiPolygon features from a GeoJSON feature collection
func ParseObstacleZones(data []byte) ([]ObstacleZone, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature collection: %w", err)
	}

	var zones []ObstacleZone
	for i, feature := range fc.Features {
		name := feature.Properties.MustString("name", fmt.Sprintf("zone-%d", i))

		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			zones = append(zones, ObstacleZone{Name: name, Polygon: g})
		case orb.MultiPolygon:
			for j, p := range g {
				zones = append(zones, ObstacleZone{Name: fmt.Sprintf("%s/%d", name, j), Polygon: p})
			}
		}
	}

	return zones, nil
}

// BlockedCellZones turns blocked grid cells into square zones of the given cell spacing
func BlockedCellZones(cells []GridCoordinate, spacing float64) []ObstacleZone {
	half := spacing / 2
	zones := make([]ObstacleZone, 0, len(cells))
	for _, c := range cells {
		x, y := float64(c.Col)*spacing, float64(c.Row)*spacing
		ring := orb.Ring{
			{x - half, y - half},
			{x + half, y - half},
			{x + half, y + half},
			{x - half, y + half},
			{x - half, y - half},
		}
		zones = append(zones, ObstacleZone{
			Name:    fmt.Sprintf("cell-%d-%d", c.Col, c.Row),
			Polygon: orb.Polygon{ring},
		})
	}
	return zones
}

// SimplifyZones reduces zone complexity using Douglas-Peucker.
// Zones whose outer ring would collapse are kept as they were.
func SimplifyZones(zones []ObstacleZone, epsilon float64) []ObstacleZone {
	if epsilon <= 0 {
		return zones
	}

	simplifier := simplify.DouglasPeucker(epsilon)
	simplified := make([]ObstacleZone, len(zones))
	for i, zone := range zones {
		simplified[i] = zone

		p, ok := simplifier.Simplify(zone.Polygon.Clone()).(orb.Polygon)
		if !ok || len(p) == 0 || len(p[0]) < 4 {
			continue
		}
		simplified[i].Polygon = p
	}
	return simplified
}

// RemoveContainedZones drops zones fully contained within other zones
func RemoveContainedZones(zones []ObstacleZone) []ObstacleZone {
	if len(zones) <= 1 {
		return zones
	}

	contained := make([]bool, len(zones))
	for i := range zones {
		if contained[i] {
			continue
		}
		for j := range zones {
			if i == j || contained[j] {
				continue
			}
			if isZoneContainedIn(zones[i], zones[j]) {
				contained[i] = true
				break
			}
			if isZoneContainedIn(zones[j], zones[i]) {
				contained[j] = true
			}
		}
	}

	result := make([]ObstacleZone, 0, len(zones))
	for i, zone := range zones {
		if !contained[i] {
			result = append(result, zone)
		}
	}
	return result
}

// isZoneContainedIn checks if zone a lies fully within zone b
func isZoneContainedIn(a, b ObstacleZone) bool {
	if len(a.Polygon) == 0 || len(b.Polygon) == 0 || len(a.Polygon[0]) == 0 {
		return false
	}

	// Quick bounding box check first
	ab, bb := a.Polygon.Bound(), b.Polygon.Bound()
	if !bb.Contains(ab.Min) || !bb.Contains(ab.Max) {
		return false
	}

	for _, vertex := range a.Polygon[0] {
		if !planar.PolygonContains(b.Polygon, vertex) {
			return false
		}
	}
	return true
}

// ApplyObstacleZones marks every indexed node inside a zone as non-traversable.
// Returns the number of nodes newly blocked.
func ApplyObstacleZones(index *SpatialIndex, zones []ObstacleZone) int {
	blocked := 0
	for _, zone := range zones {
		for _, node := range index.QueryBound(zone.Polygon.Bound()) {
			if node.Traversable && zone.Contains(node.Position) {
				node.Traversable = false
				blocked++
			}
		}
	}
	return blocked
}
