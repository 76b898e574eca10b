package config

import "sort"

var unitBox = GridConfig{Lo: []float64{-0.5, -0.5, -0.5}, Hi: []float64{0.5, 0.5, 0.5}}

func grid(shape ...int) GridConfig {
	g := unitBox
	g.Shape = shape
	return g
}

var Presets = map[string]*Config{
	"sod": {
		Problem: "sod", Model: "shocktube", Grid: grid(128), Gamma: 1.4,
		Solver: SolverConfig{"plm", "hll"}, Boundary: []string{"outflow"}, Safety: SafetyConfig{Mode: "strict"},
		Run: RunConfig{Order: 3, CFL: 0.3, FinalTime: 0.2, CheckpointInterval: 0.05, FinalCheckpoint: true},
	},
	"sod_rk4": {
		Problem: "sod_rk4", Model: "shocktube", Grid: grid(256), Gamma: 1.4,
		Solver: SolverConfig{"plm", "rusanov"}, Boundary: []string{"outflow"}, Safety: SafetyConfig{Mode: "strict"},
		Run: RunConfig{Order: 4, CFL: 0.3, FinalTime: 0.2, CheckpointInterval: 0.1},
	},
	"explosion2d": {
		Problem: "explosion2d", Model: "explosion", Grid: grid(64, 64), Gamma: 1.4,
		Solver: SolverConfig{"plm", "hll"}, Boundary: []string{"outflow"}, Safety: SafetyConfig{Mode: "repair"},
		Run: RunConfig{Order: 2, CFL: 0.4, FinalTime: 0.1, CheckpointInterval: 0.05},
	},
	"blast3d": {
		Problem: "blast3d", Model: "explosion", Grid: grid(24, 24, 24), Gamma: 1.4,
		Solver: SolverConfig{"pcm", "hll"}, Boundary: []string{"outflow"}, Safety: SafetyConfig{Mode: "repair"},
		Run: RunConfig{Order: 2, CFL: 0.3, FinalTime: 0.05, FinalCheckpoint: true},
	},
	"polytrope": {
		Problem: "polytrope", Model: "polytrope", Grid: grid(48, 48), Gamma: 1.4,
		Solver: SolverConfig{"plm", "hll"}, Boundary: []string{"outflow"}, Safety: SafetyConfig{Mode: "repair"},
		Sources: SourcesConfig{Gravity: &GravityConfig{G: 1, M: 0.1, Softening: 0.02}},
		Run:     RunConfig{Order: 3, CFL: 0.3, FinalTime: 0.1, CheckpointInterval: 0.05},
	},
	"central_mass": {
		Problem: "central_mass", Model: "central_mass", Grid: grid(128), Gamma: 1.4,
		Solver: SolverConfig{"plm", "hll"}, Boundary: []string{"outflow"}, Safety: SafetyConfig{Mode: "repair"},
		Sources: SourcesConfig{Gravity: &GravityConfig{G: 1, M: 0.1, Softening: 0.01}},
		Run:     RunConfig{Order: 3, CFL: 0.3, FinalTime: 0.2, CheckpointInterval: 0.1},
	},
	"driven": {
		Problem: "driven", Model: "uniform", Grid: grid(64, 64), Gamma: 1.4, Seed: 42,
		Solver: SolverConfig{"plm", "hll"}, Boundary: []string{"periodic"}, Safety: SafetyConfig{Mode: "repair"},
		Sources: SourcesConfig{Driving: &DrivingConfig{Amplitude: 0.5, Correlation: 0.2, Modes: 2}},
		Run:     RunConfig{Order: 3, CFL: 0.3, FinalTime: 0.5, CheckpointInterval: 0.25},
	},
}

// GetPreset returns a copy of the named preset with output defaults filled
// in, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
