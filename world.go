package main

import (
	"sort"
	"sync"
)

// World is the placement provider the navigator depends on. It owns node
// and agent entities; the navigator only enumerates, creates and destroys them.
type World interface {
	Nodes() []*NavigationNode
	SpawnNode(position Vector) *NavigationNode
	DestroyNode(node *NavigationNode)
	SpawnAgent(template AgentTemplate, position Vector) *Agent
}

// AgentTemplate describes the kind of agent to spawn
type AgentTemplate struct {
	Name  string  `json:"name" yaml:"name"`
	Speed float64 `json:"speed" yaml:"speed"`
}

// Agent is a spawned pathing agent
type Agent struct {
	ID          int
	Template    AgentTemplate
	Position    Vector
	Manager     *Manager
	CurrentNode *NavigationNode
}

// MemoryWorld is an in-memory World
type MemoryWorld struct {
	mu     sync.Mutex
	nextID int
	nodes  map[int]*NavigationNode
	agents []*Agent
}

// NewMemoryWorld creates an empty world
func NewMemoryWorld() *MemoryWorld {
	return &MemoryWorld{nodes: make(map[int]*NavigationNode)}
}

// PlaceNode adds a pre-placed node, as a level designer would
func (w *MemoryWorld) PlaceNode(position Vector, traversable bool) *NavigationNode {
	node := w.SpawnNode(position)
	node.Traversable = traversable
	return node
}

// Nodes returns all live nodes ordered by id
func (w *MemoryWorld) Nodes() []*NavigationNode {
	w.mu.Lock()
	defer w.mu.Unlock()

	nodes := make([]*NavigationNode, 0, len(w.nodes))
	for _, n := range w.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

func (w *MemoryWorld) SpawnNode(position Vector) *NavigationNode {
	w.mu.Lock()
	defer w.mu.Unlock()

	node := NewNavigationNode(w.nextID, position)
	w.nodes[node.ID] = node
	w.nextID++
	return node
}

func (w *MemoryWorld) DestroyNode(node *NavigationNode) {
	if node == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.nodes[node.ID] == node {
		delete(w.nodes, node.ID)
	}
	node.ClearConnections()
}

func (w *MemoryWorld) SpawnAgent(template AgentTemplate, position Vector) *Agent {
	w.mu.Lock()
	defer w.mu.Unlock()

	agent := &Agent{
		ID:       w.nextID,
		Template: template,
		Position: position,
	}
	w.nextID++
	w.agents = append(w.agents, agent)
	return agent
}

// Agents returns every agent spawned in this world
func (w *MemoryWorld) Agents() []*Agent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Agent(nil), w.agents...)
}
