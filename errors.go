package main

import "errors"

var (
	// ErrGridSize indicates a grid with a non-positive width or height.
	ErrGridSize = errors.New("navigator: grid width and height must be at least 1")
	// ErrVertexCount indicates the vertex list does not hold width*height entries.
	ErrVertexCount = errors.New("navigator: vertex count must equal width*height")
	// ErrNoGraph indicates a query before any graph was built.
	ErrNoGraph = errors.New("navigator: navigation graph not built")
	// ErrNoTraversableNodes indicates the graph has nothing an agent may stand on.
	ErrNoTraversableNodes = errors.New("navigator: graph has no traversable nodes")
	// ErrUnknownHeuristic indicates an unrecognised heuristic name.
	ErrUnknownHeuristic = errors.New("navigator: unknown heuristic")
	// ErrUnknownPathfinding indicates an unrecognised pathfinding algorithm name.
	ErrUnknownPathfinding = errors.New("navigator: unknown pathfinding algorithm")
	// ErrInvalidConfig indicates a configuration value out of range.
	ErrInvalidConfig = errors.New("navigator: invalid configuration")
)
