package main

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v2"
)

// Config holds navigator settings. Zero-valued files keep the defaults.
type Config struct {
	AllowedAngle               float64       `yaml:"allowed_angle"`
	SteepnessPreventConnection bool          `yaml:"steepness_prevent_connection"`
	Heuristic                  string        `yaml:"heuristic"`
	Pathfinding                string        `yaml:"pathfinding"`
	MaxIterations              int           `yaml:"max_iterations"`
	NumAgents                  int           `yaml:"num_agents"`
	AgentTemplate              AgentTemplate `yaml:"agent_template"`
	Seed                       int64         `yaml:"seed"` // 0 seeds from the clock
	ListenAddr                 string        `yaml:"listen_addr"`
	ObstacleDir                string        `yaml:"obstacle_dir"`
	ZoneSimplifyEpsilon        float64       `yaml:"zone_simplify_epsilon"`
}

// DefaultConfig returns the stock manager settings
func DefaultConfig() Config {
	return Config{
		AllowedAngle:               0.4,
		SteepnessPreventConnection: true,
		Heuristic:                  HeuristicEuclidean.String(),
		Pathfinding:                PathfindingAStar.String(),
		AgentTemplate:              AgentTemplate{Name: "enemy", Speed: 1},
		ListenAddr:                 ":8080",
	}
}

// LoadConfig reads a YAML file over DefaultConfig
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges and enum names
func (c Config) Validate() error {
	if c.AllowedAngle < 0 {
		return fmt.Errorf("%w: allowed_angle must be >= 0, got %v", ErrInvalidConfig, c.AllowedAngle)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max_iterations must be >= 0, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.NumAgents < 0 {
		return fmt.Errorf("%w: num_agents must be >= 0, got %d", ErrInvalidConfig, c.NumAgents)
	}
	if c.ZoneSimplifyEpsilon < 0 {
		return fmt.Errorf("%w: zone_simplify_epsilon must be >= 0, got %v", ErrInvalidConfig, c.ZoneSimplifyEpsilon)
	}
	if _, err := ParseHeuristicType(c.Heuristic); err != nil {
		return err
	}
	if _, err := ParsePathfindingType(c.Pathfinding); err != nil {
		return err
	}
	return nil
}

// BuildSettings extracts the graph generation settings
func (c Config) BuildSettings() BuildSettings {
	return BuildSettings{
		AllowedAngle:               c.AllowedAngle,
		SteepnessPreventConnection: c.SteepnessPreventConnection,
	}
}

// SolverSettings extracts the search settings
func (c Config) SolverSettings() (SolverSettings, error) {
	h, err := ParseHeuristicType(c.Heuristic)
	if err != nil {
		return SolverSettings{}, err
	}
	p, err := ParsePathfindingType(c.Pathfinding)
	if err != nil {
		return SolverSettings{}, err
	}
	return SolverSettings{Heuristic: h, Pathfinding: p, MaxIterations: c.MaxIterations}, nil
}
