package main

import (
	"math"

	"github.com/paulmach/orb"
)

// normalizeTolerance matches the squared-length cutoff below which a
// direction is treated as zero and left untouched.
const normalizeTolerance = 1e-8

// Vector is a world-space position or direction. Z is the vertical axis.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Sub returns v - other
func (v Vector) Sub(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Length returns the Euclidean norm
func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector pointing along v.
// Vectors too short to normalize are returned unchanged.
func (v Vector) Normalize() Vector {
	sq := v.X*v.X + v.Y*v.Y + v.Z*v.Z
	if sq < normalizeTolerance {
		return v
	}
	inv := 1 / math.Sqrt(sq)
	return Vector{X: v.X * inv, Y: v.Y * inv, Z: v.Z * inv}
}

// Distance calculates Euclidean distance between two points
func (v Vector) Distance(other Vector) float64 {
	return v.Sub(other).Length()
}

// Planar projects the position onto the ground plane
func (v Vector) Planar() orb.Point {
	return orb.Point{v.X, v.Y}
}

// GridCoordinate is a (column, row) cell in a generated grid
type GridCoordinate struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

// Sub returns the integer offset g - other
func (g GridCoordinate) Sub(other GridCoordinate) GridCoordinate {
	return GridCoordinate{Col: g.Col - other.Col, Row: g.Row - other.Row}
}

// PathLength sums the distances between consecutive nodes of a path
func PathLength(path []*NavigationNode) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		total += path[i].Position.Distance(path[i+1].Position)
	}
	return total
}
