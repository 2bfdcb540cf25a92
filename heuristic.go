package main

import (
	"fmt"
	"log"
	"math"
	"strings"
)

// HeuristicType selects the H-score estimator
type HeuristicType int

const (
	// HeuristicEuclidean is straight-line distance, usable off-grid
	HeuristicEuclidean HeuristicType = iota
	// HeuristicOctile counts 8-direction grid steps with diagonal cost sqrt(2)
	HeuristicOctile
	// HeuristicChebyshev counts 8-direction grid steps with diagonal cost 1
	HeuristicChebyshev
)

var heuristicNames = map[HeuristicType]string{
	HeuristicEuclidean: "euclidean",
	HeuristicOctile:    "octile",
	HeuristicChebyshev: "chebyshev",
}

func (h HeuristicType) String() string {
	if name, ok := heuristicNames[h]; ok {
		return name
	}
	return fmt.Sprintf("heuristic(%d)", int(h))
}

// ParseHeuristicType accepts a heuristic name in any case
func ParseHeuristicType(name string) (HeuristicType, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for h, n := range heuristicNames {
		if n == lower {
			return h, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
}

// CalculateHeuristic estimates the cost between two positions.
// Octile and Chebyshev only look at X and Y: they assume movement on the grid plane.
// An unknown kind yields math.MaxFloat64, which callers must treat as no estimate.
func CalculateHeuristic(kind HeuristicType, current, goal Vector) float64 {
	switch kind {
	case HeuristicEuclidean:
		return current.Distance(goal)
	case HeuristicOctile, HeuristicChebyshev:
		d1 := 1.0
		d2 := 1.0
		if kind == HeuristicOctile {
			d2 = math.Sqrt2
		}
		dx := math.Abs(goal.X - current.X)
		dy := math.Abs(goal.Y - current.Y)
		return d1*(dx+dy) + (d2-2*d1)*math.Min(dx, dy)
	}

	log.Printf("❌ No heuristic set (%v)\n", kind)
	return math.MaxFloat64
}
