package main

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleZones = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "lake"},
      "geometry": {"type": "Polygon", "coordinates": [[[0.5, 0.5], [1.5, 0.5], [1.5, 1.5], [0.5, 1.5], [0.5, 0.5]]]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[2.5, 2.5], [3.5, 2.5], [3.5, 3.5], [2.5, 3.5], [2.5, 2.5]]],
        [[[-0.5, 2.5], [0.5, 2.5], [0.5, 3.5], [-0.5, 3.5], [-0.5, 2.5]]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"name": "pin"},
      "geometry": {"type": "Point", "coordinates": [1, 1]}
    }
  ]
}`

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func TestParseObstacleZones(t *testing.T) {
	zones, err := ParseObstacleZones([]byte(sampleZones))
	require.NoError(t, err)

	names := make([]string, 0, len(zones))
	for _, z := range zones {
		names = append(names, z.Name)
	}
	assert.Equal(t, []string{"lake", "zone-1/0", "zone-1/1"}, names)

	assert.True(t, zones[0].Contains(Vector{X: 1, Y: 1, Z: 40}))
	assert.False(t, zones[0].Contains(Vector{X: 2, Y: 1}))

	_, err = ParseObstacleZones([]byte("not json"))
	assert.Error(t, err)
}

func TestLoadObstacleZones(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.geojson", sampleZones)
	writeFile(t, dir, "broken.geojson", "{")
	writeFile(t, dir, "ignored.json", sampleZones)

	zones, err := LoadObstacleZones(dir)
	require.NoError(t, err)
	assert.Len(t, zones, 3)

	empty, err := LoadObstacleZones(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestApplyObstacleZones(t *testing.T) {
	g, _ := buildGrid(t, 4, 4, nil, noFilter)
	zones, err := ParseObstacleZones([]byte(sampleZones))
	require.NoError(t, err)

	blocked := ApplyObstacleZones(g.index, zones)
	assert.Equal(t, 3, blocked)
	assert.False(t, g.NodeAt(1, 1).Traversable)
	assert.False(t, g.NodeAt(3, 3).Traversable)
	assert.False(t, g.NodeAt(0, 3).Traversable)
	assert.True(t, g.NodeAt(0, 0).Traversable)

	// already blocked nodes are not counted twice
	assert.Zero(t, ApplyObstacleZones(g.index, zones))
}

func TestBlockedCellZones(t *testing.T) {
	zones := BlockedCellZones([]GridCoordinate{{Col: 2, Row: 1}}, 2)
	require.Len(t, zones, 1)
	assert.Equal(t, "cell-2-1", zones[0].Name)
	assert.True(t, zones[0].Contains(Vector{X: 4, Y: 2}))
	assert.False(t, zones[0].Contains(Vector{X: 2, Y: 2}))
	assert.False(t, zones[0].Contains(Vector{X: 6, Y: 2}))
}

func TestRemoveContainedZones(t *testing.T) {
	outer := ObstacleZone{Name: "outer", Polygon: square(0, 0, 10, 10)}
	inner := ObstacleZone{Name: "inner", Polygon: square(2, 2, 4, 4)}
	apart := ObstacleZone{Name: "apart", Polygon: square(20, 20, 25, 25)}
	overlap := ObstacleZone{Name: "overlap", Polygon: square(8, 8, 12, 12)}

	got := RemoveContainedZones([]ObstacleZone{inner, outer, apart, overlap})
	names := make([]string, 0, len(got))
	for _, z := range got {
		names = append(names, z.Name)
	}
	assert.Equal(t, []string{"outer", "apart", "overlap"}, names)

	assert.Len(t, RemoveContainedZones([]ObstacleZone{inner}), 1)
}

func TestSimplifyZones(t *testing.T) {
	dense := ObstacleZone{Name: "dense", Polygon: orb.Polygon{orb.Ring{
		{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}, {0, 0},
	}}}

	simplified := SimplifyZones([]ObstacleZone{dense}, 0.1)
	require.Len(t, simplified, 1)
	ring := simplified[0].Polygon[0]
	assert.Less(t, len(ring), len(dense.Polygon[0]))
	assert.GreaterOrEqual(t, len(ring), 4)
	assert.True(t, simplified[0].Contains(Vector{X: 1, Y: 1}))
	assert.Len(t, dense.Polygon[0], 9, "input is not modified")

	unchanged := SimplifyZones([]ObstacleZone{dense}, 0)
	assert.Equal(t, dense, unchanged[0])
}
