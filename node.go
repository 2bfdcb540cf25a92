package main

import "fmt"

// NavigationNode is a single vertex of the navigation graph.
// Edges are stored on the source node only.
type NavigationNode struct {
	ID           int
	Position     Vector
	GridLocation GridCoordinate // unused for nodes that were not grid generated
	Traversable  bool

	Connected               []*NavigationNode // one hop, traversable destinations
	ConnectedNonTraversable []*NavigationNode
	AllConnected            []*NavigationNode
	AllConnectedDir         []GridCoordinate // parallel to AllConnected
}

// NewNavigationNode creates a traversable node with no connections
func NewNavigationNode(id int, position Vector) *NavigationNode {
	return &NavigationNode{
		ID:          id,
		Position:    position,
		Traversable: true,
	}
}

func (n *NavigationNode) String() string {
	return fmt.Sprintf("node-%d(%d,%d)", n.ID, n.GridLocation.Col, n.GridLocation.Row)
}

// ClearConnections drops every recorded edge
func (n *NavigationNode) ClearConnections() {
	n.Connected = nil
	n.ConnectedNonTraversable = nil
	n.AllConnected = nil
	n.AllConnectedDir = nil
}

// IsConnectedTo reports whether an accepted edge n -> other exists
func (n *NavigationNode) IsConnectedTo(other *NavigationNode) bool {
	for _, c := range n.AllConnected {
		if c == other {
			return true
		}
	}
	return false
}
