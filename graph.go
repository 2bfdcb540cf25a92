package main

import (
	"log"
)

// NavGraph is one generation of the navigation graph: every node, the
// traversable subset, and a spatial index over node positions.
// Grid-generated graphs keep Nodes in row-major order.
type NavGraph struct {
	Nodes            []*NavigationNode
	TraversableNodes []*NavigationNode
	Width, Height    int // zero for graphs discovered from the world

	index       *SpatialIndex
	connections int
}

func newNavGraph(nodes []*NavigationNode, width, height int, index *SpatialIndex) *NavGraph {
	if index == nil {
		index = NewSpatialIndex(nodes)
	}
	g := &NavGraph{
		Nodes:  nodes,
		Width:  width,
		Height: height,
		index:  index,
	}
	g.collectTraversable()
	return g
}

func (g *NavGraph) collectTraversable() {
	g.TraversableNodes = make([]*NavigationNode, 0, len(g.Nodes))
	g.connections = 0
	for _, node := range g.Nodes {
		if node.Traversable {
			g.TraversableNodes = append(g.TraversableNodes, node)
		}
		g.connections += len(node.AllConnected)
	}
}

// InBounds reports whether (col,row) lies within a generated grid
func (g *NavGraph) InBounds(col, row int) bool {
	return col >= 0 && col < g.Width && row >= 0 && row < g.Height
}

// NodeAt returns the grid node at (col,row), or nil outside the grid
func (g *NavGraph) NodeAt(col, row int) *NavigationNode {
	if !g.InBounds(col, row) {
		return nil
	}
	return g.Nodes[row*g.Width+col]
}

// FindNearestNode returns the traversable node closest to location.
// Returns nil when there are no traversable nodes.
func (g *NavGraph) FindNearestNode(location Vector) *NavigationNode {
	var nearest *NavigationNode
	nearestDistance := 0.0
	for _, node := range g.TraversableNodes {
		d := location.Distance(node.Position)
		if nearest == nil || d < nearestDistance {
			nearestDistance = d
			nearest = node
		}
	}

	if nearest == nil {
		log.Println("❌ Nearest node: no traversable nodes")
		return nil
	}
	log.Printf("Nearest node: %v\n", nearest)
	return nearest
}

// FindFurthestNode returns the traversable node furthest from location.
// Returns nil when there are no traversable nodes.
func (g *NavGraph) FindFurthestNode(location Vector) *NavigationNode {
	var furthest *NavigationNode
	furthestDistance := 0.0
	for _, node := range g.TraversableNodes {
		d := location.Distance(node.Position)
		// the first node is taken even at distance 0, so a non-empty set
		// never yields nil when every node sits on location
		if furthest == nil || d > furthestDistance {
			furthestDistance = d
			furthest = node
		}
	}

	if furthest == nil {
		log.Println("❌ Furthest node: no traversable nodes")
		return nil
	}
	log.Printf("Furthest node: %v\n", furthest)
	return furthest
}

// NodesInRegion returns all nodes whose planar position lies between lower and upper
func (g *NavGraph) NodesInRegion(lower, upper Vector) []*NavigationNode {
	return g.index.QueryRegion(lower.X, lower.Y, upper.X, upper.Y)
}

// ConnectionCount returns the number of accepted directed edges counted when
// the graph was built. It stays valid after the nodes are destroyed.
func (g *NavGraph) ConnectionCount() int {
	return g.connections
}

// EdgeLines returns traversable edges as line segments for visualization.
// A pair connected in both directions is reported once.
func (g *NavGraph) EdgeLines() [][]Vector {
	lines := make([][]Vector, 0)

	type edgeKey struct{ a, b int }
	seen := make(map[edgeKey]bool)

	for _, node := range g.Nodes {
		for _, neighbor := range node.Connected {
			key := edgeKey{node.ID, neighbor.ID}
			if neighbor.ID < node.ID {
				key = edgeKey{neighbor.ID, node.ID}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			lines = append(lines, []Vector{node.Position, neighbor.Position})
		}
	}

	return lines
}
