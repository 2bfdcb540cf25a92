package main

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// pointTolerance pads node positions so they form valid R-tree rectangles
const pointTolerance = 1e-9

// nodeEntry wraps a node for R-tree storage
type nodeEntry struct {
	node *NavigationNode
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *nodeEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// SpatialIndex answers planar region queries over node positions
type SpatialIndex struct {
	tree *rtreego.Rtree
}

// NewSpatialIndex creates a new spatial index
func NewSpatialIndex(nodes []*NavigationNode) *SpatialIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, node := range nodes {
		bbox, err := rtreego.NewRect(
			rtreego.Point{node.Position.X - pointTolerance, node.Position.Y - pointTolerance},
			[]float64{2 * pointTolerance, 2 * pointTolerance},
		)
		if err != nil {
			continue
		}
		tree.Insert(&nodeEntry{node: node, bbox: bbox})
	}

	return &SpatialIndex{tree: tree}
}

// Size returns the number of indexed nodes
func (si *SpatialIndex) Size() int {
	return si.tree.Size()
}

// QueryRegion returns nodes whose planar position lies in the box, ordered by id
func (si *SpatialIndex) QueryRegion(minX, minY, maxX, maxY float64) []*NavigationNode {
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	if maxY < minY {
		minY, maxY = maxY, minY
	}

	bbox, err := rtreego.NewRect(
		rtreego.Point{minX - pointTolerance, minY - pointTolerance},
		[]float64{maxX - minX + 2*pointTolerance, maxY - minY + 2*pointTolerance},
	)
	if err != nil {
		return []*NavigationNode{}
	}

	results := si.tree.SearchIntersect(bbox)
	nodes := make([]*NavigationNode, 0, len(results))
	for _, item := range results {
		nodes = append(nodes, item.(*nodeEntry).node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	return nodes
}

// QueryBound returns nodes inside an orb bound
func (si *SpatialIndex) QueryBound(b orb.Bound) []*NavigationNode {
	return si.QueryRegion(b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y())
}
