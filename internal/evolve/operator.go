// Package evolve advances a fluid state in time with the method of lines.
//
// An Operator assembles the semi-discrete right-hand side L(U) from
// per-axis flux differences and optional source terms, then composes
// Runge-Kutta stages from it. Between stages guard zones are refilled and
// primitives are re-derived from the conserved variables so that every
// evaluation of L sees a canonical state.
package evolve

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/darien0/fish/internal/boundary"
	"github.com/darien0/fish/internal/compute"
	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/integrators"
	"github.com/darien0/fish/internal/safety"
)

type Operator struct {
	grid      *dynamo.Grid
	fluid     dynamo.FluidState
	solver    dynamo.Solver
	boundary  dynamo.BoundaryCondition
	validator *safety.Validator
	sources   dynamo.SourceTerms
	pool      *compute.Pool
	log       zerolog.Logger

	schemes map[int]integrators.Integrator
}

type Option func(*Operator)

// WithSources installs additive source terms. A nil provider disables them.
func WithSources(s dynamo.SourceTerms) Option {
	return func(op *Operator) { op.sources = s }
}

func WithBoundary(bc dynamo.BoundaryCondition) Option {
	return func(op *Operator) { op.boundary = bc }
}

func WithValidator(v *safety.Validator) Option {
	return func(op *Operator) { op.validator = v }
}

// WithWorkers sets the number of goroutines used for each axis pass.
func WithWorkers(n int) Option {
	return func(op *Operator) { op.pool = compute.NewPool(n) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(op *Operator) { op.log = l }
}

// New builds an operator over fluid. Boundaries default to outflow, the
// validator to strict mode, and the worker pool to one worker per CPU.
func New(fluid dynamo.FluidState, solver dynamo.Solver, opts ...Option) (*Operator, error) {
	if fluid == nil {
		return nil, dynamo.Configurationf("fluid state is required")
	}
	if solver == nil {
		return nil, dynamo.Configurationf("solver is required")
	}
	op := &Operator{
		grid:    fluid.Grid(),
		fluid:   fluid,
		solver:  solver,
		log:     zerolog.Nop(),
		schemes: make(map[int]integrators.Integrator),
	}
	for _, opt := range opts {
		opt(op)
	}
	if op.boundary == nil {
		op.boundary = boundary.NewOutflow()
	}
	if op.validator == nil {
		op.validator = safety.New(safety.Strict, op.log)
	}
	if op.pool == nil {
		op.pool = compute.NewPool(0)
	}
	return op, nil
}

func (op *Operator) Grid() *dynamo.Grid                 { return op.grid }
func (op *Operator) Fluid() dynamo.FluidState           { return op.fluid }
func (op *Operator) Sources() dynamo.SourceTerms        { return op.sources }
func (op *Operator) Boundary() dynamo.BoundaryCondition { return op.boundary }

// Zones is the number of interior cells.
func (op *Operator) Zones() int { return op.grid.InteriorCells() }

func (op *Operator) scheme(order int) (integrators.Integrator, error) {
	if s, ok := op.schemes[order]; ok {
		return s, nil
	}
	s, err := integrators.ForOrder(order)
	if err != nil {
		return nil, err
	}
	op.schemes[order] = s
	return s, nil
}

// Advance moves the fluid forward by dt with a Runge-Kutta scheme of the
// given order and returns the wall-clock time spent. If any stage fails the
// fluid keeps its pre-step primitives and the error is returned.
func (op *Operator) Advance(dt float64, order int) (time.Duration, error) {
	start := time.Now()
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0, dynamo.Configurationf("time step must be positive and finite, got %g", dt)
	}
	integ, err := op.scheme(order)
	if err != nil {
		return 0, err
	}

	u0 := op.fluid.Conserved()
	p0 := op.fluid.Primitive().Clone()

	u1, err := integ.Step(integrators.RHSFunc(op.ComputeRHS), u0, dt)
	if err == nil {
		op.boundary.Apply(u1)
		err = op.fluid.FromConserved(u1)
	}
	if err != nil {
		if rerr := op.fluid.SetPrimitive(p0); rerr != nil {
			op.log.Error().Err(rerr).Msg("restore primitive snapshot")
		}
		return time.Since(start), err
	}

	if op.sources != nil {
		op.sources.Advance(dt)
	}
	return time.Since(start), nil
}
