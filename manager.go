package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Route is a planned path between two world positions
type Route struct {
	Start  *NavigationNode
	End    *NavigationNode
	Path   []*NavigationNode
	Length float64
}

// Manager owns the current navigation graph, the solver and the spawned
// agents. Searches and queries share a read lock; regeneration and
// spawning take the write lock, so a graph is never rebuilt under a search.
type Manager struct {
	mu sync.RWMutex

	config  Config
	world   World
	zones   []ObstacleZone
	graph   *NavGraph
	solver  *PathSolver
	agents  []*Agent
	rng     *rand.Rand
	metrics *NavigatorMetrics
	tracer  trace.Tracer
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithMetrics records metrics for builds, searches and agents
func WithMetrics(m *NavigatorMetrics) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithTracer overrides the global tracer for builds and searches
func WithTracer(t trace.Tracer) ManagerOption {
	return func(mgr *Manager) { mgr.tracer = t }
}

// WithZones sets the obstacle zones applied on every grid generation
func WithZones(zones []ObstacleZone) ManagerOption {
	return func(mgr *Manager) { mgr.zones = zones }
}

// NewManager validates cfg and creates a manager over world
func NewManager(cfg Config, world World, opts ...ManagerOption) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	settings, err := cfg.SolverSettings()
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := &Manager{
		config: cfg,
		world:  world,
		rng:    rand.New(rand.NewSource(seed)),
	}
	for _, opt := range opts {
		opt(m)
	}

	solverOpts := []SolverOption{WithSolverMetrics(m.metrics)}
	if m.tracer != nil {
		solverOpts = append(solverOpts, WithSolverTracer(m.tracer))
	}
	m.solver = NewPathSolver(settings, solverOpts...)

	return m, nil
}

// Config returns the manager configuration
func (m *Manager) Config() Config {
	return m.config
}

// builder applies the configured zones plus extra for a single build
func (m *Manager) builder(extra []ObstacleZone) *GraphBuilder {
	opts := []BuilderOption{WithBuilderMetrics(m.metrics)}
	zones := append(append([]ObstacleZone(nil), m.zones...), extra...)
	if len(zones) > 0 {
		zones = RemoveContainedZones(SimplifyZones(zones, m.config.ZoneSimplifyEpsilon))
		opts = append(opts, WithObstacleZones(zones))
	}
	if m.tracer != nil {
		opts = append(opts, WithBuilderTracer(m.tracer))
	}
	return NewGraphBuilder(m.world, m.config.BuildSettings(), opts...)
}

// Start populates the graph from nodes already in the world and spawns the
// configured number of agents.
func (m *Manager) Start() {
	m.PopulateNodes()
	m.CreateAgents(m.config.NumAgents, m.config.AgentTemplate)
}

// PopulateNodes rebuilds the graph from the nodes placed in the world
func (m *Manager) PopulateNodes() *NavGraph {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.graph = m.builder(nil).BuildFromExisting()
	return m.graph
}

// GenerateNodes replaces the graph with a freshly generated grid. extra zones
// block nodes for this build only, on top of the manager's own zones.
func (m *Manager) GenerateNodes(ctx context.Context, vertices []Vector, width, height int, extra ...ObstacleZone) (*NavGraph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, err := m.builder(extra).GenerateGrid(ctx, vertices, width, height)
	if err != nil {
		return nil, err
	}
	m.graph = g
	return g, nil
}

// SetZones replaces the manager's own obstacle zones used by later generations
func (m *Manager) SetZones(zones []ObstacleZone) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones = zones
}

// Graph returns the current graph, nil before the first build. Node
// adjacency may be cleared by a later regeneration; read it through the
// manager (EdgeLines, GeneratePath, PlanRoute) when others may regenerate.
func (m *Manager) Graph() *NavGraph {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.graph
}

// EdgeLines returns the current graph's edge segments and node count under
// the read lock, or ErrNoGraph before the first build.
func (m *Manager) EdgeLines() ([][]Vector, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.graph == nil {
		return nil, 0, ErrNoGraph
	}
	return m.graph.EdgeLines(), len(m.graph.Nodes), nil
}

// GeneratePath runs the configured search between two nodes of the current graph
func (m *Manager) GeneratePath(ctx context.Context, start, end *NavigationNode) []*NavigationNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.solver.FindPath(ctx, start, end)
}

// PlanRoute snaps both positions to their nearest traversable nodes and
// searches between them under one read lock.
func (m *Manager) PlanRoute(ctx context.Context, from, to Vector) (*Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.graph == nil {
		return nil, ErrNoGraph
	}
	start := m.graph.FindNearestNode(from)
	end := m.graph.FindNearestNode(to)
	if start == nil || end == nil {
		return nil, ErrNoTraversableNodes
	}

	path := m.solver.FindPath(ctx, start, end)
	return &Route{
		Start:  start,
		End:    end,
		Path:   path,
		Length: PathLength(path),
	}, nil
}

// FindNearestNode returns the traversable node closest to location, or nil
func (m *Manager) FindNearestNode(location Vector) *NavigationNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.graph == nil {
		return nil
	}
	return m.graph.FindNearestNode(location)
}

// FindFurthestNode returns the traversable node furthest from location, or nil
func (m *Manager) FindFurthestNode(location Vector) *NavigationNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.graph == nil {
		return nil
	}
	return m.graph.FindFurthestNode(location)
}

// CreateAgents spawns count agents on traversable nodes picked uniformly at
// random with replacement. Returns the agents spawned by this call.
func (m *Manager) CreateAgents(count int, template AgentTemplate) []*Agent {
	m.mu.Lock()
	defer m.mu.Unlock()

	if count <= 0 {
		return []*Agent{}
	}
	if m.graph == nil || len(m.graph.TraversableNodes) == 0 {
		log.Printf("⚠️  Cannot spawn %d agents: no traversable nodes\n", count)
		return []*Agent{}
	}

	spawned := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		node := m.graph.TraversableNodes[m.rng.Intn(len(m.graph.TraversableNodes))]
		agent := m.world.SpawnAgent(template, node.Position)
		agent.Manager = m
		agent.CurrentNode = node
		spawned = append(spawned, agent)
	}
	m.agents = append(m.agents, spawned...)
	m.metrics.SetAgents(len(m.agents))

	log.Printf("Spawned %d %q agents\n", len(spawned), template.Name)
	return spawned
}

// Agents returns every agent spawned by this manager
func (m *Manager) Agents() []*Agent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Agent(nil), m.agents...)
}

// String summarizes the manager state for logs
func (m *Manager) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	nodes := 0
	if m.graph != nil {
		nodes = len(m.graph.Nodes)
	}
	return fmt.Sprintf("manager(nodes=%d, agents=%d, %s/%s)", nodes, len(m.agents), m.config.Pathfinding, m.config.Heuristic)
}
