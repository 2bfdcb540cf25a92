package main

import (
	"context"
	"math"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortestDistances runs Floyd-Warshall over the traversable edges of g,
// costing each edge by Euclidean distance. Indices follow g.Nodes.
func shortestDistances(g *NavGraph) [][]float64 {
	n := len(g.Nodes)
	index := make(map[*NavigationNode]int, n)
	for i, node := range g.Nodes {
		index[node] = i
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = math.Inf(1)
			}
		}
	}
	for i, node := range g.Nodes {
		for _, neighbor := range node.Connected {
			j := index[neighbor]
			dist[i][j] = math.Min(dist[i][j], node.Position.Distance(neighbor.Position))
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if d := dist[i][k] + dist[k][j]; d < dist[i][j] {
					dist[i][j] = d
				}
			}
		}
	}
	return dist
}

func requireValidPath(t *testing.T, path []*NavigationNode, start, end *NavigationNode) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Same(t, start, path[0])
	assert.Same(t, end, path[len(path)-1])
	for i := 0; i+1 < len(path); i++ {
		assert.Contains(t, path[i].Connected, path[i+1], "step %d: %v -> %v", i, path[i], path[i+1])
	}
}

func TestFindPath_StartEqualsEnd(t *testing.T) {
	g, _ := buildGrid(t, 3, 3, nil, noFilter)
	solver := NewPathSolver(SolverSettings{})

	node := g.NodeAt(1, 1)
	path := solver.FindPath(context.Background(), node, node)
	assert.Equal(t, []*NavigationNode{node}, path)
}

func TestFindPath_FlatGrid(t *testing.T) {
	g, _ := buildGrid(t, 5, 5, nil, noFilter)
	solver := NewPathSolver(SolverSettings{Heuristic: HeuristicOctile})
	ctx := context.Background()

	straight := solver.FindPath(ctx, g.NodeAt(0, 0), g.NodeAt(4, 0))
	requireValidPath(t, straight, g.NodeAt(0, 0), g.NodeAt(4, 0))
	assert.Len(t, straight, 5)
	assert.InDelta(t, 4, PathLength(straight), 1e-9)

	diagonal := solver.FindPath(ctx, g.NodeAt(0, 0), g.NodeAt(4, 4))
	requireValidPath(t, diagonal, g.NodeAt(0, 0), g.NodeAt(4, 4))
	assert.Len(t, diagonal, 5)
	assert.InDelta(t, 4*math.Sqrt2, PathLength(diagonal), 1e-9)

	reverse := solver.FindPath(ctx, g.NodeAt(4, 4), g.NodeAt(0, 0))
	requireValidPath(t, reverse, g.NodeAt(4, 4), g.NodeAt(0, 0))
}

func TestFindPath_MatchesBruteForce(t *testing.T) {
	heuristics := []HeuristicType{HeuristicEuclidean, HeuristicOctile, HeuristicChebyshev}
	ctx := context.Background()

	for seed := int64(1); seed <= 6; seed++ {
		rng := rand.New(rand.NewSource(seed))
		width, height := 3+rng.Intn(3), 3+rng.Intn(3)

		var blocked []GridCoordinate
		for i := 0; i < width*height/5; i++ {
			blocked = append(blocked, GridCoordinate{Col: rng.Intn(width), Row: rng.Intn(height)})
		}

		g, _ := buildGrid(t, width, height, randomHeights(rng, width*height, 0.7),
			BuildSettings{AllowedAngle: 0.4, SteepnessPreventConnection: true},
			WithObstacleZones(BlockedCellZones(blocked, 1)))
		dist := shortestDistances(g)

		for _, kind := range heuristics {
			solver := NewPathSolver(SolverSettings{Heuristic: kind})
			for i, start := range g.Nodes {
				for j, end := range g.Nodes {
					if !start.Traversable || !end.Traversable {
						continue
					}
					path := solver.FindPath(ctx, start, end)
					if math.IsInf(dist[i][j], 1) {
						assert.Empty(t, path, "seed %d %v: %v -> %v", seed, kind, start, end)
						continue
					}
					requireValidPath(t, path, start, end)
					assert.InDelta(t, dist[i][j], PathLength(path), 1e-9, "seed %d %v: %v -> %v", seed, kind, start, end)
				}
			}
		}
	}
}

func TestFindPath_Unreachable(t *testing.T) {
	wall := BlockedCellZones([]GridCoordinate{{Col: 2, Row: 0}, {Col: 2, Row: 1}, {Col: 2, Row: 2}}, 1)
	g, _ := buildGrid(t, 5, 3, nil, noFilter, WithObstacleZones(wall))
	solver := NewPathSolver(SolverSettings{})

	path := solver.FindPath(context.Background(), g.NodeAt(0, 1), g.NodeAt(4, 1))
	assert.NotNil(t, path)
	assert.Empty(t, path)
}

func TestFindPath_NilEndpoints(t *testing.T) {
	g, _ := buildGrid(t, 2, 2, nil, noFilter)
	solver := NewPathSolver(SolverSettings{})
	ctx := context.Background()

	assert.Empty(t, solver.FindPath(ctx, nil, g.NodeAt(1, 1)))
	assert.Empty(t, solver.FindPath(ctx, g.NodeAt(0, 0), nil))
}

func TestFindPath_UnknownAlgorithm(t *testing.T) {
	g, _ := buildGrid(t, 2, 2, nil, noFilter)
	solver := NewPathSolver(SolverSettings{Pathfinding: PathfindingType(7)})

	assert.Empty(t, solver.FindPath(context.Background(), g.NodeAt(0, 0), g.NodeAt(1, 1)))
}

func TestFindPath_IterationLimit(t *testing.T) {
	g, _ := buildGrid(t, 6, 6, nil, noFilter)
	ctx := context.Background()

	capped := NewPathSolver(SolverSettings{MaxIterations: 2})
	assert.Empty(t, capped.FindPath(ctx, g.NodeAt(0, 0), g.NodeAt(5, 5)))

	roomy := NewPathSolver(SolverSettings{MaxIterations: 1000})
	assert.Len(t, roomy.FindPath(ctx, g.NodeAt(0, 0), g.NodeAt(5, 5)), 6)
}

func TestFindPath_JumpPointSearch(t *testing.T) {
	g, _ := buildGrid(t, 5, 5, nil, noFilter)
	ctx := context.Background()
	start, end := g.NodeAt(0, 0), g.NodeAt(4, 2)

	astar := NewPathSolver(SolverSettings{Heuristic: HeuristicEuclidean})
	jps := NewPathSolver(SolverSettings{Heuristic: HeuristicEuclidean, Pathfinding: PathfindingJPS})

	// with Euclidean edge costs both variants agree on the optimum
	a := astar.FindPath(ctx, start, end)
	j := jps.FindPath(ctx, start, end)
	requireValidPath(t, j, start, end)
	assert.InDelta(t, PathLength(a), PathLength(j), 1e-9)

	// Chebyshev edge costs make every step cost 1
	chebyshev := NewPathSolver(SolverSettings{Heuristic: HeuristicChebyshev, Pathfinding: PathfindingJPS})
	steps := chebyshev.FindPath(ctx, start, end)
	requireValidPath(t, steps, start, end)
	assert.Len(t, steps, 5)
}

func TestFindPath_Deterministic(t *testing.T) {
	g, _ := buildGrid(t, 6, 6, nil, noFilter)
	solver := NewPathSolver(SolverSettings{Heuristic: HeuristicChebyshev})
	ctx := context.Background()

	first := solver.FindPath(ctx, g.NodeAt(0, 0), g.NodeAt(5, 3))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, solver.FindPath(ctx, g.NodeAt(0, 0), g.NodeAt(5, 3)))
	}
}

// linearScanAStar keeps the open set as a plain slice, takes the first entry
// with the lowest F and appends nodes that are not already open.
func linearScanAStar(start, end *NavigationNode, kind HeuristicType) []*NavigationNode {
	g := map[*NavigationNode]float64{start: 0}
	h := map[*NavigationNode]float64{start: CalculateHeuristic(kind, start.Position, end.Position)}
	cameFrom := map[*NavigationNode]*NavigationNode{}
	open := []*NavigationNode{start}

	for len(open) > 0 {
		best := 0
		for i := 1; i < len(open); i++ {
			if g[open[i]]+h[open[i]] < g[open[best]]+h[open[best]] {
				best = i
			}
		}
		current := open[best]
		open = slices.Delete(open, best, best+1)

		if current == end {
			path := []*NavigationNode{end}
			for node := end; node != start; {
				node = cameFrom[node]
				path = append(path, node)
			}
			slices.Reverse(path)
			return path
		}

		for _, neighbor := range current.Connected {
			tentative := g[current] + current.Position.Distance(neighbor.Position)
			if old, ok := g[neighbor]; ok && tentative >= old {
				continue
			}
			cameFrom[neighbor] = current
			g[neighbor] = tentative
			h[neighbor] = CalculateHeuristic(kind, neighbor.Position, end.Position)
			if !slices.Contains(open, neighbor) {
				open = append(open, neighbor)
			}
		}
	}
	return []*NavigationNode{}
}

func TestFindPath_TieBreakMatchesLinearScan(t *testing.T) {
	ctx := context.Background()
	grids := []struct {
		name      string
		seed      int64
		maxHeight float64
	}{
		{"flat", 1, 0},
		{"gentle", 2, 0.3},
		{"hilly", 3, 0.8},
	}
	for _, grid := range grids {
		rng := rand.New(rand.NewSource(grid.seed))
		var heights []float64
		if grid.maxHeight > 0 {
			heights = randomHeights(rng, 36, grid.maxHeight)
		}
		g, _ := buildGrid(t, 6, 6, heights, BuildSettings{AllowedAngle: 0.4, SteepnessPreventConnection: true})

		for _, kind := range []HeuristicType{HeuristicEuclidean, HeuristicOctile, HeuristicChebyshev} {
			solver := NewPathSolver(SolverSettings{Heuristic: kind})
			for _, start := range g.Nodes {
				for _, end := range g.Nodes {
					want := linearScanAStar(start, end, kind)
					got := solver.FindPath(ctx, start, end)
					assert.True(t, slices.Equal(want, got), "%s %v: %v -> %v", grid.name, kind, start, end)
				}
			}
		}
	}
}

func TestFindPath_ConcurrentSearches(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	g, _ := buildGrid(t, 8, 8, randomHeights(rng, 64, 0.5), BuildSettings{AllowedAngle: 0.4, SteepnessPreventConnection: true})
	solver := NewPathSolver(SolverSettings{Heuristic: HeuristicOctile})
	ctx := context.Background()

	start, end := g.TraversableNodes[0], g.TraversableNodes[len(g.TraversableNodes)-1]
	want := solver.FindPath(ctx, start, end)

	var wg sync.WaitGroup
	results := make([][]*NavigationNode, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = solver.FindPath(ctx, start, end)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestPathLength(t *testing.T) {
	assert.Zero(t, PathLength(nil))
	path := []*NavigationNode{
		NewNavigationNode(0, Vector{}),
		NewNavigationNode(1, Vector{X: 3, Y: 4}),
		NewNavigationNode(2, Vector{X: 3, Y: 4, Z: 2}),
	}
	assert.InDelta(t, 7, PathLength(path), 1e-12)
}
