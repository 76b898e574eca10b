package evolve

import (
	"context"

	"github.com/darien0/fish/internal/dynamo"
)

// ComputeRHS returns L(u). The guard zones of u are refilled in place, and
// when the validator repairs the state u is rewritten from the repaired
// primitives. Ghost cells of the result are zero.
func (op *Operator) ComputeRHS(u *dynamo.Field) (*dynamo.Field, error) {
	op.boundary.Apply(u)
	if err := op.fluid.FromConserved(u); err != nil {
		return nil, err
	}

	rep, err := op.validator.Validate(op.fluid)
	if err != nil {
		return nil, err
	}
	if rep.Total() > 0 {
		if err := u.CopyFrom(op.fluid.Conserved()); err != nil {
			return nil, err
		}
	}

	prim := op.fluid.Primitive()
	l := dynamo.NewField(op.grid, u.Nq())
	for axis := 0; axis < op.grid.Dim(); axis++ {
		if err := op.fluxDivergence(prim, l, axis); err != nil {
			return nil, err
		}
	}

	if op.sources != nil {
		s, err := op.sources.Evaluate(prim.Interior())
		if err != nil {
			return nil, err
		}
		if err := l.AddInterior(s); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// fluxDivergence adds -(F[i+1/2] - F[i-1/2]) / h along axis to the interior
// cells of l. Lines are independent and may run concurrently; each one
// writes only its own cells.
func (op *Operator) fluxDivergence(prim, l *dynamo.Field, axis int) error {
	g := op.grid
	n := g.Axis(axis).N
	ng := g.NG()
	stride := g.Stride(axis)
	h := g.Spacing(axis)
	starts := g.Lines(axis)

	return op.pool.ForEach(context.Background(), len(starts), func(k int) error {
		start := starts[k]
		line := make([][]float64, n)
		for i := range line {
			line[i] = prim.Cell(start + i*stride)
		}

		fiph, err := op.solver.IntercellFlux(line, axis)
		if err != nil {
			return err
		}
		if len(fiph) != n-1 {
			return dynamo.Configurationf("solver returned %d fluxes for a line of %d cells", len(fiph), n)
		}

		for i := ng; i < n-ng; i++ {
			dst := l.Cell(start + i*stride)
			fr, fl := fiph[i], fiph[i-1]
			for q := range dst {
				dst[q] -= (fr[q] - fl[q]) / h
			}
		}
		return nil
	})
}
