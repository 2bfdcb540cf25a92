package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "grid-navigator",
		Short:        "Grid navigation graph builder and path solver",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file")
	root.AddCommand(newServeCommand(), newPlanCommand())
	return root
}

// loadCommandConfig reads --config when given, else the defaults
func loadCommandConfig(cmd *cobra.Command) (Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP navigation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides listen_addr)")
	return cmd
}

func serve(cfg Config) error {
	log.Println("========================================")
	log.Println("🚀 Grid Navigator Server")
	log.Println("========================================")

	registry := prometheus.NewRegistry()
	opts := []ManagerOption{WithMetrics(NewNavigatorMetrics(registry))}

	if cfg.ObstacleDir != "" {
		zones, err := LoadObstacleZones(cfg.ObstacleDir)
		if err != nil {
			return fmt.Errorf("failed to load obstacle zones: %w", err)
		}
		opts = append(opts, WithZones(zones))
	}

	manager, err := NewManager(cfg, NewMemoryWorld(), opts...)
	if err != nil {
		return err
	}
	manager.Start()

	server := NewServer(manager, registry)

	log.Printf("Server starting on %s\n", cfg.ListenAddr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /generateGrid   - Build a navigation grid from vertices or heights")
	log.Println("  POST /route          - Compute a path between two positions")
	log.Println("  GET  /nearestNode    - Nearest traversable node to x,y,z")
	log.Println("  GET  /furthestNode   - Furthest traversable node from x,y,z")
	log.Println("  POST /spawnAgents    - Spawn agents on random traversable nodes")
	log.Println("  GET  /graphLines     - Graph edges for visualization")
	log.Println("  GET  /health         - Check server status")
	log.Println("  GET  /metrics        - Prometheus metrics")
	log.Println("========================================")

	return http.ListenAndServe(cfg.ListenAddr, server.Routes())
}

func newPlanCommand() *cobra.Command {
	var terrainPath, from, to string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a grid from a terrain file and print a path between two cells",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			start, err := parseCell(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := parseCell(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if quiet {
				log.SetOutput(io.Discard)
			}
			return plan(cmd, cfg, terrainPath, start, end)
		},
	}
	cmd.Flags().StringVar(&terrainPath, "terrain", "", "YAML terrain file")
	cmd.Flags().StringVar(&from, "from", "0,0", "start cell as col,row")
	cmd.Flags().StringVar(&to, "to", "", "end cell as col,row")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress build logs")
	_ = cmd.MarkFlagRequired("terrain")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func plan(cmd *cobra.Command, cfg Config, terrainPath string, from, to GridCoordinate) error {
	terrain, err := LoadTerrain(terrainPath)
	if err != nil {
		return err
	}
	vertices, err := terrain.Vertices()
	if err != nil {
		return err
	}
	zones, err := terrain.ObstacleZones()
	if err != nil {
		return err
	}

	manager, err := NewManager(cfg, NewMemoryWorld(), WithZones(zones))
	if err != nil {
		return err
	}
	g, err := manager.GenerateNodes(cmd.Context(), vertices, terrain.Width, terrain.Height)
	if err != nil {
		return err
	}

	start, end := g.NodeAt(from.Col, from.Row), g.NodeAt(to.Col, to.Row)
	if start == nil || end == nil {
		return fmt.Errorf("%w: cell outside %dx%d grid", ErrGridSize, g.Width, g.Height)
	}

	out := cmd.OutOrStdout()
	path := manager.GeneratePath(cmd.Context(), start, end)
	if len(path) == 0 {
		fmt.Fprintln(out, "no path")
		return nil
	}
	for _, n := range path {
		fmt.Fprintf(out, "%d,%d\t%.3f\t%.3f\t%.3f\n", n.GridLocation.Col, n.GridLocation.Row, n.Position.X, n.Position.Y, n.Position.Z)
	}
	fmt.Fprintf(out, "length\t%.3f\n", PathLength(path))
	return nil
}

// parseCell reads "col,row"
func parseCell(s string) (GridCoordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return GridCoordinate{}, fmt.Errorf("want col,row, got %q", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return GridCoordinate{}, err
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return GridCoordinate{}, err
	}
	return GridCoordinate{Col: col, Row: row}, nil
}
