package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "grid-navigator"

// Neighbor offsets as (dCol, dRow). Row+1 is "top".
var (
	offsetTopLeft     = GridCoordinate{Col: -1, Row: 1}
	offsetTop         = GridCoordinate{Col: 0, Row: 1}
	offsetTopRight    = GridCoordinate{Col: 1, Row: 1}
	offsetLeft        = GridCoordinate{Col: -1, Row: 0}
	offsetRight       = GridCoordinate{Col: 1, Row: 0}
	offsetBottomLeft  = GridCoordinate{Col: -1, Row: -1}
	offsetBottom      = GridCoordinate{Col: 0, Row: -1}
	offsetBottomRight = GridCoordinate{Col: 1, Row: -1}
)

// gridNeighborOffsets lists the 8-connected neighbors of an interior cell in
// the order candidates are offered to AddConnection.
var gridNeighborOffsets = []GridCoordinate{
	offsetTopLeft, offsetTop, offsetTopRight,
	offsetLeft, offsetRight,
	offsetBottomLeft, offsetBottom, offsetBottomRight,
}

// Boundary cells offer their in-bounds neighbors in their own orders.
var (
	bottomLeftCornerOffsets  = []GridCoordinate{offsetTop, offsetTopRight, offsetRight}
	bottomRightCornerOffsets = []GridCoordinate{offsetTop, offsetTopLeft, offsetLeft}
	topLeftCornerOffsets     = []GridCoordinate{offsetBottom, offsetBottomRight, offsetRight}
	topRightCornerOffsets    = []GridCoordinate{offsetBottom, offsetBottomLeft, offsetLeft}
	leftEdgeOffsets          = []GridCoordinate{offsetTop, offsetTopRight, offsetRight, offsetBottom, offsetBottomRight}
	topEdgeOffsets           = []GridCoordinate{offsetLeft, offsetRight, offsetBottomLeft, offsetBottom, offsetBottomRight}
	rightEdgeOffsets         = []GridCoordinate{offsetTop, offsetTopLeft, offsetLeft, offsetBottom, offsetBottomLeft}
	bottomEdgeOffsets        = []GridCoordinate{offsetLeft, offsetRight, offsetTopLeft, offsetTop, offsetTopRight}
)

// neighborOffsets picks the candidate order for (col,row). Corners are
// matched before edges. On 1-wide or 1-high grids some offsets fall outside
// the grid and are skipped by the caller.
func neighborOffsets(col, row, width, height int) []GridCoordinate {
	left, right := col == 0, col == width-1
	bottom, top := row == 0, row == height-1

	switch {
	case bottom && left:
		return bottomLeftCornerOffsets
	case bottom && right:
		return bottomRightCornerOffsets
	case top && left:
		return topLeftCornerOffsets
	case top && right:
		return topRightCornerOffsets
	case left:
		return leftEdgeOffsets
	case top:
		return topEdgeOffsets
	case right:
		return rightEdgeOffsets
	case bottom:
		return bottomEdgeOffsets
	}
	return gridNeighborOffsets
}

// BuildSettings controls slope-based edge rejection
type BuildSettings struct {
	// AllowedAngle bounds the vertical component of the unit direction
	// between two nodes. It is not an angle in radians.
	AllowedAngle               float64
	SteepnessPreventConnection bool
}

// GraphBuilder creates navigation graphs from the world or from a vertex grid
type GraphBuilder struct {
	world    World
	settings BuildSettings
	zones    []ObstacleZone
	metrics  *NavigatorMetrics
	tracer   trace.Tracer
}

// BuilderOption configures a GraphBuilder
type BuilderOption func(*GraphBuilder)

// WithObstacleZones blocks nodes inside the zones before adjacency is computed
func WithObstacleZones(zones []ObstacleZone) BuilderOption {
	return func(b *GraphBuilder) { b.zones = zones }
}

// WithBuilderMetrics records connection and graph size metrics
func WithBuilderMetrics(m *NavigatorMetrics) BuilderOption {
	return func(b *GraphBuilder) { b.metrics = m }
}

// WithBuilderTracer overrides the global tracer
func WithBuilderTracer(t trace.Tracer) BuilderOption {
	return func(b *GraphBuilder) { b.tracer = t }
}

// NewGraphBuilder creates a builder that spawns and destroys nodes through world
func NewGraphBuilder(world World, settings BuildSettings, opts ...BuilderOption) *GraphBuilder {
	b := &GraphBuilder{
		world:    world,
		settings: settings,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildFromExisting collects the nodes already placed in the world.
// Adjacency is taken as-is from the discovered nodes.
func (b *GraphBuilder) BuildFromExisting() *NavGraph {
	g := newNavGraph(b.world.Nodes(), 0, 0, nil)
	b.metrics.RecordGraph(g)
	log.Printf("Populated %d nodes (%d traversable)\n", len(g.Nodes), len(g.TraversableNodes))
	return g
}

// GenerateGrid destroys every node in the world, spawns one node per vertex
// and connects the grid. vertices are row-major: index = row*width + col.
func (b *GraphBuilder) GenerateGrid(ctx context.Context, vertices []Vector, width, height int) (*NavGraph, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrGridSize, width, height)
	}
	if len(vertices) != width*height {
		return nil, fmt.Errorf("%w: got %d for %dx%d", ErrVertexCount, len(vertices), width, height)
	}

	_, span := b.tracer.Start(ctx, "navigator.generate_grid", trace.WithAttributes(
		attribute.Int("grid.width", width),
		attribute.Int("grid.height", height),
	))
	defer span.End()

	startTime := time.Now()
	log.Printf("🗺️  Generating navigation grid %dx%d...\n", width, height)

	for _, node := range b.world.Nodes() {
		b.world.DestroyNode(node)
	}

	nodes := make([]*NavigationNode, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			node := b.world.SpawnNode(vertices[row*width+col])
			node.GridLocation = GridCoordinate{Col: col, Row: row}
			nodes[row*width+col] = node
		}
	}

	index := NewSpatialIndex(nodes)
	if len(b.zones) > 0 {
		blocked := ApplyObstacleZones(index, b.zones)
		log.Printf("   Obstacle zones blocked %d nodes\n", blocked)
	}

	g := newNavGraph(nodes, width, height, index)

	accepted, rejected := 0, 0
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			from := g.NodeAt(col, row)
			for _, d := range neighborOffsets(col, row, width, height) {
				to := g.NodeAt(col+d.Col, row+d.Row)
				if to == nil {
					continue
				}
				if b.AddConnection(from, to) {
					accepted++
				} else {
					rejected++
				}
			}
		}
	}

	g.connections = accepted
	b.metrics.RecordGraph(g)
	span.SetAttributes(
		attribute.Int("graph.nodes", len(g.Nodes)),
		attribute.Int("graph.connections", accepted),
		attribute.Int("graph.rejected", rejected),
	)

	log.Printf("   ✅ Grid built: %d nodes (%d traversable), %d connections\n",
		len(g.Nodes), len(g.TraversableNodes), accepted)
	if rejected > 0 {
		log.Printf("   ℹ️  Rejected %d connections as too steep\n", rejected)
	}
	log.Printf("   ⏱️  Build time: %s\n", time.Since(startTime))

	return g, nil
}

// AddConnection records the edge from -> to unless the slope between the
// nodes is too steep. The slope test uses the vertical component of the
// unit direction from `to` towards `from`.
func (b *GraphBuilder) AddConnection(from, to *NavigationNode) bool {
	if from == nil || to == nil || from == to {
		return false
	}

	canConnect := true
	if b.settings.SteepnessPreventConnection {
		direction := from.Position.Sub(to.Position).Normalize()
		canConnect = direction.Z < b.settings.AllowedAngle && direction.Z > -b.settings.AllowedAngle
	}
	b.metrics.RecordConnection(canConnect)
	if !canConnect {
		return false
	}

	if to.Traversable {
		from.Connected = append(from.Connected, to)
	} else {
		from.ConnectedNonTraversable = append(from.ConnectedNonTraversable, to)
	}
	from.AllConnected = append(from.AllConnected, to)
	from.AllConnectedDir = append(from.AllConnectedDir, to.GridLocation.Sub(from.GridLocation))

	return true
}
