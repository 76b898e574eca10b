// Package experiment assembles a runnable simulation from a configuration
// and records its outputs.
package experiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/darien0/fish/internal/config"
	"github.com/darien0/fish/internal/evolve"
	"github.com/darien0/fish/internal/models"
	"github.com/darien0/fish/internal/physics"
	"github.com/darien0/fish/internal/sim"
	"github.com/darien0/fish/internal/storage"
	"github.com/darien0/fish/internal/store"
)

type Experiment struct {
	cfg       *config.Config
	op        *evolve.Operator
	simulator *sim.Simulator
	log       zerolog.Logger
}

// Outcome is what a finished run leaves behind.
type Outcome struct {
	Run    *storage.RunMetadata
	Result *sim.Result
}

// New validates cfg, builds every component it names and loads the initial
// model onto the grid.
func New(cfg *config.Config, logger zerolog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	g, err := NewGrid(cfg)
	if err != nil {
		return nil, err
	}
	solver, err := NewSolver(cfg)
	if err != nil {
		return nil, err
	}
	bc, err := NewBoundary(cfg)
	if err != nil {
		return nil, err
	}
	validator, err := NewValidator(cfg, logger)
	if err != nil {
		return nil, err
	}
	model, err := models.Get(cfg.Model, cfg.ModelParams)
	if err != nil {
		return nil, err
	}

	op, err := evolve.New(physics.NewIdealGas(g, gamma(cfg)), solver,
		evolve.WithBoundary(bc),
		evolve.WithValidator(validator),
		evolve.WithSources(NewSources(cfg)),
		evolve.WithWorkers(cfg.Workers),
		evolve.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if err := op.InitialModel(models.Func(model)); err != nil {
		return nil, fmt.Errorf("initial model %s: %w", model.Name(), err)
	}

	s := sim.New(op, logger)
	for _, m := range DefaultMetrics() {
		s.AddMetric(m)
	}

	logger.Info().
		Str("problem", cfg.Problem).
		Str("model", model.Name()).
		Ints("shape", cfg.Grid.Shape).
		Int("order", cfg.Run.Order).
		Msg("experiment ready")

	return &Experiment{cfg: cfg, op: op, simulator: s, log: logger}, nil
}

func (e *Experiment) Config() *config.Config     { return e.cfg }
func (e *Experiment) Operator() *evolve.Operator { return e.op }
func (e *Experiment) Simulator() *sim.Simulator  { return e.simulator }

// SimConfig is the loop configuration with checkpoints written to dir.
func (e *Experiment) SimConfig(dir string) sim.Config {
	r := e.cfg.Run
	return sim.Config{
		CFL:                r.CFL,
		FinalTime:          r.FinalTime,
		Order:              r.Order,
		CheckpointInterval: r.CheckpointInterval,
		CheckpointDir:      dir,
		FinalCheckpoint:    r.FinalCheckpoint,
		MaxIterations:      r.MaxIterations,
	}
}

// Run creates a run directory in runs, evolves the experiment to its final
// time and saves metadata, measurements and checkpoints there. When db is
// non-nil every measurement is also appended to it as the run progresses.
// A failed simulation still returns the outcome recorded so far.
func (e *Experiment) Run(ctx context.Context, runs *storage.Store, db *store.Store) (*Outcome, error) {
	meta, err := runs.Create(storage.RunMetadata{
		Problem:   e.cfg.Problem,
		Seed:      e.cfg.Seed,
		Shape:     e.cfg.Grid.Shape,
		Order:     e.cfg.Run.Order,
		CFL:       e.cfg.Run.CFL,
		FinalTime: e.cfg.Run.FinalTime,
		Solver:    e.cfg.Solver.Reconstruction + "/" + e.cfg.Solver.Flux,
		Boundary:  strings.Join(e.cfg.Boundary, ","),
		Safety:    e.cfg.Safety.Mode,
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	log := e.log.With().Str("run", meta.ID).Logger()

	var rec *store.Recorder
	if db != nil {
		if err := db.RegisterRun(ctx, meta.ID, e.cfg.Problem); err != nil {
			return nil, err
		}
		rec = db.Recorder(ctx, meta.ID)
		e.simulator.AddObserver(rec)
	}

	result, runErr := e.simulator.Run(ctx, e.SimConfig(runs.RunDir(meta.ID)))
	out := &Outcome{Run: meta, Result: result}
	if result == nil {
		return out, runErr
	}

	meta.Iterations = result.Status.Iteration
	meta.Time = result.Status.Time
	meta.Checkpoints = len(result.Checkpoints)
	meta.Metrics = result.Metrics
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	if err := runs.SaveMeasurements(meta.ID, result.Log.Entries()); err != nil {
		log.Error().Err(err).Msg("save measurements")
	}
	if err := runs.SaveMetadata(meta); err != nil {
		log.Error().Err(err).Msg("save metadata")
	}

	if runErr != nil {
		return out, runErr
	}
	if rec != nil && rec.Err() != nil {
		return out, fmt.Errorf("record measurements: %w", rec.Err())
	}
	log.Info().
		Int("iterations", meta.Iterations).
		Float64("time", meta.Time).
		Int("checkpoints", meta.Checkpoints).
		Msg("run saved")
	return out, nil
}
