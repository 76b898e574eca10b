package physics

import (
	"github.com/darien0/fish/internal/dynamo"
)

type IdealGas struct {
	grid  *dynamo.Grid
	gamma float64
	prim  *dynamo.Field
}

func NewIdealGas(g *dynamo.Grid, gamma float64) *IdealGas {
	if gamma <= 1 {
		gamma = DefaultGamma
	}
	return &IdealGas{
		grid:  g,
		gamma: gamma,
		prim:  dynamo.NewField(g, dynamo.NumQ),
	}
}

func (s *IdealGas) Grid() *dynamo.Grid       { return s.grid }
func (s *IdealGas) Gamma() float64           { return s.gamma }
func (s *IdealGas) Primitive() *dynamo.Field { return s.prim }

func (s *IdealGas) FromConserved(u *dynamo.Field) error {
	if !s.prim.SameShape(u) {
		return dynamo.Configurationf("conserved array has %d values, state holds %d", len(u.Data()), len(s.prim.Data()))
	}
	for c := 0; c < s.grid.Cells(); c++ {
		ConsToPrim(s.gamma, u.Cell(c), s.prim.Cell(c))
	}
	return nil
}

func (s *IdealGas) Conserved() *dynamo.Field {
	u := dynamo.NewField(s.grid, dynamo.NumQ)
	for c := 0; c < s.grid.Cells(); c++ {
		PrimToCons(s.gamma, s.prim.Cell(c), u.Cell(c))
	}
	return u
}

func (s *IdealGas) SetPrimitive(p *dynamo.Field) error {
	if p == s.prim {
		return nil
	}
	return s.prim.CopyFrom(p)
}

// Eigenvalues returns v-c, v, v, v, v+c per cell, v being the velocity along axis.
func (s *IdealGas) Eigenvalues(axis int) *dynamo.Field {
	ev := dynamo.NewField(s.grid, dynamo.NumQ)
	for c := 0; c < s.grid.Cells(); c++ {
		p, l := s.prim.Cell(c), ev.Cell(c)
		vn := p[dynamo.VelocityX+axis]
		cs := SoundSpeed(s.gamma, p)
		l[0], l[1], l[2], l[3], l[4] = vn-cs, vn, vn, vn, vn+cs
	}
	return ev
}
