package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/darien0/fish/internal/dynamo"
)

const (
	DefaultCFL       = 0.3
	DefaultOrder     = 3
	DefaultFinalTime = 0.2
	DefaultGamma     = 1.4
	DefaultOutputDir = "data"
)

type Config struct {
	Problem     string             `yaml:"problem" toml:"problem"`
	Model       string             `yaml:"model" toml:"model"`
	ModelParams map[string]float64 `yaml:"model_params,omitempty" toml:"model_params,omitempty"`
	Grid        GridConfig         `yaml:"grid" toml:"grid"`
	Gamma       float64            `yaml:"gamma" toml:"gamma"`
	Solver      SolverConfig       `yaml:"solver" toml:"solver"`
	Boundary    []string           `yaml:"boundary" toml:"boundary"`
	Safety      SafetyConfig       `yaml:"safety" toml:"safety"`
	Sources     SourcesConfig      `yaml:"sources,omitempty" toml:"sources,omitempty"`
	Run         RunConfig          `yaml:"run" toml:"run"`
	Seed        int64              `yaml:"seed" toml:"seed"`
	Workers     int                `yaml:"workers" toml:"workers"`
	OutputDir   string             `yaml:"output_dir" toml:"output_dir"`
	Database    string             `yaml:"database,omitempty" toml:"database,omitempty"`
}

type GridConfig struct {
	Shape []int     `yaml:"shape" toml:"shape"`
	Lo    []float64 `yaml:"lo" toml:"lo"`
	Hi    []float64 `yaml:"hi" toml:"hi"`
}

type SolverConfig struct {
	Reconstruction string `yaml:"reconstruction" toml:"reconstruction"`
	Flux           string `yaml:"flux" toml:"flux"`
}

type SafetyConfig struct {
	Mode  string  `yaml:"mode" toml:"mode"`
	Floor float64 `yaml:"floor,omitempty" toml:"floor,omitempty"`
}

type RunConfig struct {
	Order              int     `yaml:"order" toml:"order"`
	CFL                float64 `yaml:"cfl" toml:"cfl"`
	FinalTime          float64 `yaml:"final_time" toml:"final_time"`
	CheckpointInterval float64 `yaml:"checkpoint_interval" toml:"checkpoint_interval"`
	FinalCheckpoint    bool    `yaml:"final_checkpoint" toml:"final_checkpoint"`
	MaxIterations      int     `yaml:"max_iterations,omitempty" toml:"max_iterations,omitempty"`
}

type SourcesConfig struct {
	Gravity *GravityConfig `yaml:"gravity,omitempty" toml:"gravity,omitempty"`
	Driving *DrivingConfig `yaml:"driving,omitempty" toml:"driving,omitempty"`
}

type GravityConfig struct {
	G         float64 `yaml:"G" toml:"G"`
	M         float64 `yaml:"M" toml:"M"`
	Softening float64 `yaml:"softening" toml:"softening"`
}

type DrivingConfig struct {
	Amplitude   float64 `yaml:"amplitude" toml:"amplitude"`
	Correlation float64 `yaml:"correlation" toml:"correlation"`
	Modes       int     `yaml:"modes" toml:"modes"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem: "sod",
		Model:   "shocktube",
		Grid: GridConfig{
			Shape: []int{128},
			Lo:    []float64{-0.5, -0.5, -0.5},
			Hi:    []float64{0.5, 0.5, 0.5},
		},
		Gamma:    DefaultGamma,
		Solver:   SolverConfig{Reconstruction: "plm", Flux: "hll"},
		Boundary: []string{"outflow"},
		Safety:   SafetyConfig{Mode: "strict"},
		Run: RunConfig{
			Order:              DefaultOrder,
			CFL:                DefaultCFL,
			FinalTime:          DefaultFinalTime,
			CheckpointInterval: 1.0,
		},
		OutputDir: DefaultOutputDir,
	}
}

// Load reads a run configuration over the defaults. Files ending in .toml
// are decoded as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if isTOML(path) {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, dynamo.Configurationf("%s: unknown keys %v", path, undecoded)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if isTOML(path) {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Validate checks everything that can be checked before a grid is built.
func (c *Config) Validate() error {
	dim := len(c.Grid.Shape)
	if dim < 1 || dim > 3 {
		return dynamo.Configurationf("grid must have 1-3 axes, got %d", dim)
	}
	if len(c.Grid.Lo) < dim || len(c.Grid.Hi) < dim {
		return dynamo.Configurationf("grid bounds cover %d/%d axes, need %d", len(c.Grid.Lo), len(c.Grid.Hi), dim)
	}
	for a, n := range c.Grid.Shape {
		if n < 1 {
			return dynamo.Configurationf("axis %d has %d cells", a, n)
		}
		if !(c.Grid.Hi[a] > c.Grid.Lo[a]) {
			return dynamo.Configurationf("axis %d has empty extent [%g, %g]", a, c.Grid.Lo[a], c.Grid.Hi[a])
		}
	}
	if c.Run.Order < 1 || c.Run.Order > 4 {
		return dynamo.Configurationf("order must be 1-4, got %d", c.Run.Order)
	}
	if !(c.Run.CFL > 0 && c.Run.CFL < 1) {
		return dynamo.Configurationf("cfl must lie in (0, 1), got %g", c.Run.CFL)
	}
	if c.Run.FinalTime <= 0 {
		return dynamo.Configurationf("final_time must be positive, got %g", c.Run.FinalTime)
	}
	if c.Run.CheckpointInterval < 0 {
		return dynamo.Configurationf("checkpoint_interval must not be negative")
	}
	switch c.Safety.Mode {
	case "", "strict", "repair":
	default:
		return dynamo.Configurationf("unknown safety mode %q", c.Safety.Mode)
	}
	if len(c.Boundary) > dim {
		return dynamo.Configurationf("%d boundary policies for %d axes", len(c.Boundary), dim)
	}
	if d := c.Sources.Driving; d != nil && d.Modes < 1 {
		return dynamo.Configurationf("driving needs at least one mode")
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Grid.Shape = append([]int(nil), c.Grid.Shape...)
	out.Grid.Lo = append([]float64(nil), c.Grid.Lo...)
	out.Grid.Hi = append([]float64(nil), c.Grid.Hi...)
	out.Boundary = append([]string(nil), c.Boundary...)
	if c.ModelParams != nil {
		out.ModelParams = make(map[string]float64, len(c.ModelParams))
		for k, v := range c.ModelParams {
			out.ModelParams[k] = v
		}
	}
	if c.Sources.Gravity != nil {
		g := *c.Sources.Gravity
		out.Sources.Gravity = &g
	}
	if c.Sources.Driving != nil {
		d := *c.Sources.Driving
		out.Sources.Driving = &d
	}
	return &out
}
