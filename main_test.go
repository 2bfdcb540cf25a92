package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// noFilter accepts every candidate connection
var noFilter = BuildSettings{}

// buildGrid generates a unit-spaced grid in a fresh world
func buildGrid(t *testing.T, width, height int, heights []float64, settings BuildSettings, opts ...BuilderOption) (*NavGraph, *MemoryWorld) {
	t.Helper()
	world := NewMemoryWorld()
	vertices, err := GridVertices(width, height, 1, heights)
	require.NoError(t, err)
	g, err := NewGraphBuilder(world, settings, opts...).GenerateGrid(context.Background(), vertices, width, height)
	require.NoError(t, err)
	return g, world
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseCell(t *testing.T) {
	cases := []struct {
		in      string
		want    GridCoordinate
		wantErr bool
	}{
		{"0,0", GridCoordinate{0, 0}, false},
		{"3, 7", GridCoordinate{3, 7}, false},
		{"3", GridCoordinate{}, true},
		{"a,1", GridCoordinate{}, true},
		{"1,b", GridCoordinate{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseCell(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPlanCommand_PrintsPath(t *testing.T) {
	dir := t.TempDir()
	terrain := writeFile(t, dir, "terrain.yaml", `
width: 3
height: 2
spacing: 2
heights: [0, 0, 0, 0, 0, 0]
`)

	out, err := runCLI(t, "plan", "--terrain", terrain, "--to", "2,0", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "0,0\t0.000\t0.000\t0.000")
	assert.Contains(t, out, "2,0\t4.000\t0.000\t0.000")
	assert.Contains(t, out, "length\t4.000")
}

func TestPlanCommand_BlockedWall(t *testing.T) {
	dir := t.TempDir()
	terrain := writeFile(t, dir, "terrain.yaml", `
width: 3
height: 3
blocked:
  - {col: 1, row: 0}
  - {col: 1, row: 1}
  - {col: 1, row: 2}
`)

	out, err := runCLI(t, "plan", "--terrain", terrain, "--from", "0,1", "--to", "2,1", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, "no path\n", out)
}

func TestPlanCommand_UsesConfig(t *testing.T) {
	dir := t.TempDir()
	terrain := writeFile(t, dir, "terrain.yaml", `
width: 2
height: 1
heights: [0, 5]
`)
	steep := writeFile(t, dir, "steep.yaml", "allowed_angle: 0.4\n")
	lenient := writeFile(t, dir, "lenient.yaml", "steepness_prevent_connection: false\n")

	out, err := runCLI(t, "plan", "--config", steep, "--terrain", terrain, "--to", "1,0", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, "no path\n", out)

	out, err = runCLI(t, "plan", "--config", lenient, "--terrain", terrain, "--to", "1,0", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "1,0\t1.000\t0.000\t5.000")
}

func TestPlanCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	terrain := writeFile(t, dir, "terrain.yaml", "width: 2\nheight: 2\n")

	_, err := runCLI(t, "plan", "--terrain", terrain, "--to", "5,5", "--quiet")
	assert.ErrorIs(t, err, ErrGridSize)

	_, err = runCLI(t, "plan", "--terrain", filepath.Join(dir, "missing.yaml"), "--to", "1,1", "--quiet")
	assert.Error(t, err)

	_, err = runCLI(t, "plan", "--terrain", terrain, "--to", "x", "--quiet")
	assert.Error(t, err)
}
