package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/metrics"
)

type Simulator struct {
	op        Stepper
	metrics   []metrics.Metric
	observers []Observer
	log       zerolog.Logger
}

func New(op Stepper, logger zerolog.Logger) *Simulator {
	return &Simulator{
		op:        op,
		metrics:   make([]metrics.Metric, 0),
		observers: make([]Observer, 0),
		log:       logger,
	}
}

func (s *Simulator) AddMetric(m metrics.Metric) { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)     { s.observers = append(s.observers, o) }

// Start validates cfg, resets the metrics and returns an empty result ready
// for Step.
func (s *Simulator) Start(cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	return &Result{
		Log:         metrics.NewLog(),
		Checkpoints: make([]string, 0),
		Metrics:     make(map[string]float64),
		Stopped:     StopFinalTime,
	}, nil
}

// Run advances the operator until the simulated time reaches cfg.FinalTime.
// A partial result is always returned; checkpoints and measurements written
// before an error are kept.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	result, err := s.Start(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	status := &result.Status
	finish := func(err error) (*Result, error) {
		result.Wall = time.Since(start)
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
		return result, err
	}

	for status.Time < cfg.FinalTime {
		select {
		case <-ctx.Done():
			result.Stopped = StopCanceled
			return finish(ctx.Err())
		default:
		}

		if cfg.MaxIterations > 0 && status.Iteration >= cfg.MaxIterations {
			result.Stopped = StopMaxIterations
			break
		}

		if err := s.Step(cfg, result); err != nil {
			return finish(err)
		}
	}

	if cfg.FinalCheckpoint {
		if err := s.checkpoint(cfg, status, result); err != nil {
			result.Stopped = StopError
			return finish(wrap(status.Iteration, status.Time, err))
		}
	}

	s.log.Info().
		Int("iterations", status.Iteration).
		Float64("time", status.Time).
		Str("stopped", result.Stopped).
		Dur("wall", time.Since(start)).
		Msg("simulation finished")
	return finish(nil)
}

// Step runs one iteration of the loop on result: CFL time step, advance,
// status update, periodic checkpoint and measurement. On failure the
// returned error is a *dynamo.SimulationError and result.Stopped says why.
func (s *Simulator) Step(cfg Config, result *Result) error {
	status := &result.Status

	dt, err := s.timeStep(cfg)
	if err != nil {
		result.Stopped = StopError
		return wrap(status.Iteration+1, status.Time, err)
	}

	wall, err := s.op.Advance(dt, cfg.Order)
	if err != nil {
		result.Stopped = StopError
		if errors.Is(err, dynamo.ErrUnphysical) {
			result.Stopped = StopUnphysical
		}
		s.log.Error().Err(err).Int("iteration", status.Iteration+1).Float64("time", status.Time).Msg("step failed")
		return wrap(status.Iteration+1, status.Time, err)
	}

	status.TimeStep = dt
	status.Time += dt
	status.Iteration++
	status.Message = Diagnostics{
		Iteration: status.Iteration,
		Time:      status.Time,
		Dt:        dt,
		Wall:      wall,
		Zones:     s.op.Zones(),
	}.String()

	if cfg.CheckpointInterval > 0 && status.Time-status.LastCheckpoint > cfg.CheckpointInterval {
		if err := s.checkpoint(cfg, status, result); err != nil {
			result.Stopped = StopError
			return wrap(status.Iteration, status.Time, err)
		}
	}

	m := s.op.Measure()
	m.Iteration = status.Iteration
	m.Time = status.Time
	m.Message = status.Message
	if err := result.Log.Append(m); err != nil {
		result.Stopped = StopError
		return wrap(status.Iteration, status.Time, err)
	}

	for _, mt := range s.metrics {
		mt.Observe(m)
	}
	for _, obs := range s.observers {
		obs.OnStep(*status, m)
	}
	s.log.Debug().Msg(status.Message)
	return nil
}

func (s *Simulator) timeStep(cfg Config) (float64, error) {
	ml := s.op.MaxWavespeed()
	if !(ml > 0) || math.IsInf(ml, 0) {
		return 0, dynamo.Configurationf("maximum wavespeed %g gives no usable time step", ml)
	}
	return cfg.CFL * s.op.MinGridSpacing() / ml, nil
}

func (s *Simulator) checkpoint(cfg Config, status *dynamo.Status, result *Result) error {
	path, err := s.op.WriteCheckpoint(cfg.CheckpointDir, status, map[string]any{
		"measlog": result.Log.Entries(),
	})
	if err != nil {
		return err
	}
	result.Checkpoints = append(result.Checkpoints, path)
	return nil
}

func wrap(iteration int, t float64, err error) error {
	return &dynamo.SimulationError{Iteration: iteration, Time: t, Wrapped: err}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.CFL > 0 && cfg.CFL < 1) {
		return dynamo.Configurationf("CFL must lie in (0, 1), got %g", cfg.CFL)
	}
	if cfg.FinalTime <= 0 {
		return dynamo.Configurationf("final time must be positive, got %g", cfg.FinalTime)
	}
	if cfg.Order < 1 || cfg.Order > 4 {
		return dynamo.Configurationf("Runge-Kutta order must be 1-4, got %d", cfg.Order)
	}
	if cfg.CheckpointInterval < 0 {
		return dynamo.Configurationf("checkpoint interval must not be negative, got %g", cfg.CheckpointInterval)
	}
	if (cfg.CheckpointInterval > 0 || cfg.FinalCheckpoint) && cfg.CheckpointDir == "" {
		return fmt.Errorf("%w: checkpoints requested without a directory", dynamo.ErrConfiguration)
	}
	return nil
}
