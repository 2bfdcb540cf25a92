package main

import (
	"container/heap"
	"context"
	"fmt"
	"log"
	"math"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PathfindingType selects the search algorithm
type PathfindingType int

const (
	// PathfindingAStar is A* with Euclidean edge costs
	PathfindingAStar PathfindingType = iota
	// PathfindingJPS is the jump point search variant. Its successor pruning
	// is a pass-through, so it expands like A* but costs edges by heuristic.
	PathfindingJPS
)

var pathfindingNames = map[PathfindingType]string{
	PathfindingAStar: "a_star",
	PathfindingJPS:   "jps",
}

func (p PathfindingType) String() string {
	if name, ok := pathfindingNames[p]; ok {
		return name
	}
	return fmt.Sprintf("pathfinding(%d)", int(p))
}

// ParsePathfindingType accepts "a_star", "astar", "a*" or "jps" in any case
func ParsePathfindingType(name string) (PathfindingType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a_star", "astar", "a*":
		return PathfindingAStar, nil
	case "jps":
		return PathfindingJPS, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPathfinding, name)
}

// searchRecord is the per-search scratch state of one node
type searchRecord struct {
	node     *NavigationNode
	g        float64 // cost from start to this node
	h        float64 // heuristic cost from this node to end
	cameFrom *NavigationNode
	index    int    // index in the heap, -1 when not open
	seq      uint64 // insertion order into the open set
}

func (r *searchRecord) f() float64 {
	return r.g + r.h
}

// openSet implements heap.Interface ordered by F-score, then insertion order
type openSet []*searchRecord

func (pq openSet) Len() int { return len(pq) }

func (pq openSet) Less(i, j int) bool {
	fi, fj := pq[i].f(), pq[j].f()
	if fi != fj {
		return fi < fj
	}
	return pq[i].seq < pq[j].seq
}

func (pq openSet) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *openSet) Push(x interface{}) {
	n := len(*pq)
	record := x.(*searchRecord)
	record.index = n
	*pq = append(*pq, record)
}

func (pq *openSet) Pop() interface{} {
	old := *pq
	n := len(old)
	record := old[n-1]
	old[n-1] = nil
	record.index = -1
	*pq = old[0 : n-1]
	return record
}

// expansionPolicy decides which neighbors a search visits and what an edge costs
type expansionPolicy interface {
	successors(current, end *NavigationNode) []*NavigationNode
	edgeCost(from, to *NavigationNode) float64
}

type aStarExpansion struct{}

func (aStarExpansion) successors(current, _ *NavigationNode) []*NavigationNode {
	return current.Connected
}

func (aStarExpansion) edgeCost(from, to *NavigationNode) float64 {
	return from.Position.Distance(to.Position)
}

type jpsExpansion struct {
	heuristic HeuristicType
}

func (p jpsExpansion) successors(current, end *NavigationNode) []*NavigationNode {
	return identifyJumpSuccessors(current, end)
}

func (p jpsExpansion) edgeCost(from, to *NavigationNode) float64 {
	return CalculateHeuristic(p.heuristic, from.Position, to.Position)
}

// identifyJumpSuccessors is where jump point pruning belongs. It currently
// returns every traversable neighbor; AllConnectedDir carries the grid
// directions a pruning rule would need.
func identifyJumpSuccessors(current, _ *NavigationNode) []*NavigationNode {
	return current.Connected
}

// SolverSettings configures a PathSolver
type SolverSettings struct {
	Heuristic   HeuristicType
	Pathfinding PathfindingType
	// MaxIterations caps the nodes taken off the open set; 0 means no cap
	MaxIterations int
}

// PathSolver runs informed searches over a navigation graph. Search state is
// allocated per call, so one solver may serve concurrent searches as long
// as the graph is not regenerated meanwhile.
type PathSolver struct {
	settings SolverSettings
	metrics  *NavigatorMetrics
	tracer   trace.Tracer
}

// SolverOption configures a PathSolver
type SolverOption func(*PathSolver)

// WithSolverMetrics records search metrics
func WithSolverMetrics(m *NavigatorMetrics) SolverOption {
	return func(s *PathSolver) { s.metrics = m }
}

// WithSolverTracer overrides the global tracer
func WithSolverTracer(t trace.Tracer) SolverOption {
	return func(s *PathSolver) { s.tracer = t }
}

// NewPathSolver creates a solver
func NewPathSolver(settings SolverSettings, opts ...SolverOption) *PathSolver {
	s := &PathSolver{
		settings: settings,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the solver configuration
func (s *PathSolver) Settings() SolverSettings {
	return s.settings
}

// FindPath returns the lowest-cost path from start to end, both inclusive.
// An empty path means no path was found.
func (s *PathSolver) FindPath(ctx context.Context, start, end *NavigationNode) []*NavigationNode {
	algorithm := s.settings.Pathfinding.String()
	_, span := s.tracer.Start(ctx, "navigator.find_path", trace.WithAttributes(
		attribute.String("algorithm", algorithm),
		attribute.String("heuristic", s.settings.Heuristic.String()),
	))
	defer span.End()

	startTime := time.Now()
	path, expanded, outcome := s.run(start, end)
	s.metrics.RecordSearch(algorithm, outcome, expanded, time.Since(startTime))

	span.SetAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("expanded", expanded),
		attribute.Int("path.length", len(path)),
	)
	if outcome != outcomeFound {
		span.SetStatus(codes.Error, outcome)
		log.Printf("❌ NO PATH FOUND (%s, %s)\n", algorithm, outcome)
	}

	return path
}

func (s *PathSolver) run(start, end *NavigationNode) ([]*NavigationNode, int, string) {
	if start == nil || end == nil {
		return []*NavigationNode{}, 0, outcomeInvalid
	}

	var policy expansionPolicy
	switch s.settings.Pathfinding {
	case PathfindingAStar:
		policy = aStarExpansion{}
	case PathfindingJPS:
		policy = jpsExpansion{heuristic: s.settings.Heuristic}
	default:
		return []*NavigationNode{}, 0, outcomeInvalid
	}

	return s.search(start, end, policy)
}

// search is the shared open-set loop. Nodes absent from records have an
// implicit G-score of +Inf.
func (s *PathSolver) search(start, end *NavigationNode, policy expansionPolicy) ([]*NavigationNode, int, string) {
	records := make(map[*NavigationNode]*searchRecord)
	record := func(n *NavigationNode) *searchRecord {
		r, ok := records[n]
		if !ok {
			r = &searchRecord{node: n, g: math.Inf(1), index: -1}
			records[n] = r
		}
		return r
	}

	var seq uint64
	open := &openSet{}

	startRecord := record(start)
	startRecord.g = 0
	startRecord.h = CalculateHeuristic(s.settings.Heuristic, start.Position, end.Position)
	startRecord.seq = seq
	heap.Push(open, startRecord)

	expanded := 0
	for open.Len() > 0 {
		if s.settings.MaxIterations > 0 && expanded >= s.settings.MaxIterations {
			return []*NavigationNode{}, expanded, outcomeIterationLimit
		}

		current := heap.Pop(open).(*searchRecord)
		expanded++

		if current.node == end {
			return reconstructPath(records, start, end), expanded, outcomeFound
		}

		for _, neighbor := range policy.successors(current.node, end) {
			tentativeG := current.g + policy.edgeCost(current.node, neighbor)
			next := record(neighbor)
			if tentativeG >= next.g {
				continue
			}

			next.cameFrom = current.node
			next.g = tentativeG
			next.h = CalculateHeuristic(s.settings.Heuristic, neighbor.Position, end.Position)
			if next.index >= 0 {
				heap.Fix(open, next.index)
			} else {
				seq++
				next.seq = seq
				heap.Push(open, next)
			}
		}
	}

	return []*NavigationNode{}, expanded, outcomeNoPath
}

// reconstructPath walks predecessors back from end and returns start -> end
func reconstructPath(records map[*NavigationNode]*searchRecord, start, end *NavigationNode) []*NavigationNode {
	path := []*NavigationNode{end}
	for node := end; node != start; {
		node = records[node].cameFrom
		path = append(path, node)
	}
	slices.Reverse(path)
	return path
}
