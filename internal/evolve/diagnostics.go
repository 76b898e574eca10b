package evolve

import (
	"math"

	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/metrics"
)

// InitialModel sets the primitive state of every cell, guards included,
// from fn evaluated at the cell center, then refills the guard zones.
func (op *Operator) InitialModel(fn dynamo.PrimitiveFunc) error {
	p := op.fluid.Primitive()
	for c := 0; c < op.grid.Cells(); c++ {
		x := op.grid.Center(c)
		v := fn(x[0], x[1], x[2])
		copy(p.Cell(c), v[:])
	}
	if err := op.fluid.SetPrimitive(p); err != nil {
		return err
	}
	u := op.fluid.Conserved()
	op.boundary.Apply(u)
	return op.fluid.FromConserved(u)
}

// MinGridSpacing is the smallest cell width over the active axes.
func (op *Operator) MinGridSpacing() float64 {
	return op.grid.MinSpacing()
}

// MaxWavespeed is the largest characteristic speed magnitude over interior
// cells and active axes.
func (op *Operator) MaxWavespeed() float64 {
	var ml float64
	for axis := 0; axis < op.grid.Dim(); axis++ {
		eig := op.fluid.Eigenvalues(axis)
		op.grid.ForEachInterior(func(c, _ int) {
			for _, v := range eig.Cell(c) {
				if a := math.Abs(v); a > ml {
					ml = a
				}
			}
		})
	}
	return ml
}

// Measure summarizes the interior cells. Kinetic is the mean of rho |v|^2.
func (op *Operator) Measure() metrics.Measurement {
	p := op.fluid.Primitive()
	u := op.fluid.Conserved()
	m := metrics.Measurement{
		DensityMax: math.Inf(-1),
		DensityMin: math.Inf(1),
	}

	op.grid.ForEachInterior(func(c, _ int) {
		pc, uc := p.Cell(c), u.Cell(c)
		rho := pc[dynamo.Density]
		v2 := 0.0
		for d := 0; d < 3; d++ {
			v := pc[dynamo.VelocityX+d]
			v2 += v * v
		}
		m.Kinetic += rho * v2
		m.DensityMax = math.Max(m.DensityMax, rho)
		m.DensityMin = math.Min(m.DensityMin, rho)
		for q := 0; q < dynamo.NumQ; q++ {
			m.ConservedAvg[q] += uc[q]
			m.PrimitiveAvg[q] += pc[q]
		}
	})

	n := float64(op.grid.InteriorCells())
	m.Kinetic /= n
	for q := 0; q < dynamo.NumQ; q++ {
		m.ConservedAvg[q] /= n
		m.PrimitiveAvg[q] /= n
	}
	return m
}
