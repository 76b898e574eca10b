package experiment

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/darien0/fish/internal/boundary"
	"github.com/darien0/fish/internal/config"
	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/metrics"
	"github.com/darien0/fish/internal/physics"
	"github.com/darien0/fish/internal/riemann"
	"github.com/darien0/fish/internal/safety"
	"github.com/darien0/fish/internal/sources"
)

// NewGrid builds the mesh described by cfg.
func NewGrid(cfg *config.Config) (*dynamo.Grid, error) {
	return dynamo.NewGrid(cfg.Grid.Shape, cfg.Grid.Lo, cfg.Grid.Hi)
}

func NewSolver(cfg *config.Config) (*riemann.Solver, error) {
	return riemann.New(gamma(cfg), cfg.Solver.Reconstruction, cfg.Solver.Flux)
}

func NewBoundary(cfg *config.Config) (*boundary.Condition, error) {
	return boundary.New(cfg.Boundary...)
}

func NewValidator(cfg *config.Config, logger zerolog.Logger) (*safety.Validator, error) {
	mode := safety.Strict
	switch strings.ToLower(cfg.Safety.Mode) {
	case "", "strict":
	case "repair":
		mode = safety.Repair
	default:
		return nil, dynamo.Configurationf("unknown safety mode %q", cfg.Safety.Mode)
	}
	v := safety.New(mode, logger)
	if cfg.Safety.Floor > 0 {
		v.Floor = cfg.Safety.Floor
	}
	return v, nil
}

// NewSources returns the configured source terms, or nil when there are
// none.
func NewSources(cfg *config.Config) dynamo.SourceTerms {
	var sum sources.Sum
	if g := cfg.Sources.Gravity; g != nil {
		cg := sources.NewCentralGravity(g.M)
		if g.G != 0 {
			cg.G = g.G
		}
		if g.Softening > 0 {
			cg.Softening = g.Softening
		}
		sum = append(sum, cg)
	}
	if d := cfg.Sources.Driving; d != nil {
		sum = append(sum, sources.NewDriving(len(cfg.Grid.Shape), d.Modes, d.Amplitude, d.Correlation, cfg.Seed))
	}
	switch len(sum) {
	case 0:
		return nil
	case 1:
		return sum[0]
	}
	return sum
}

// DefaultMetrics are attached to every experiment.
func DefaultMetrics() []metrics.Metric {
	return []metrics.Metric{
		metrics.NewMeanKinetic(),
		metrics.NewConservationDrift("mass_drift", dynamo.Density),
		metrics.NewConservationDrift("energy_drift", dynamo.Energy),
		metrics.NewDensityFloor(),
	}
}

func gamma(cfg *config.Config) float64 {
	if cfg.Gamma > 0 && !math.IsInf(cfg.Gamma, 0) {
		return cfg.Gamma
	}
	return physics.DefaultGamma
}
