// Package sources provides additive right-hand side contributions.
//
// Every provider receives the interior primitive array and returns a
// conserved derivative of the same interior shape. Layout follows
// [dynamo.NumQ]: density, energy, three momentum components.
package sources

import (
	"math"
	"math/rand"

	"github.com/darien0/fish/internal/dynamo"
)

// accelerate adds rho*a to the momentum and rho*v.a to the energy of s.
func accelerate(p, s []float64, a [3]float64) {
	rho := p[dynamo.Density]
	for d := 0; d < 3; d++ {
		s[dynamo.MomentumX+d] += rho * a[d]
		s[dynamo.Energy] += rho * p[dynamo.VelocityX+d] * a[d]
	}
}

// CentralGravity is the field of a fixed point mass.
type CentralGravity struct {
	G         float64
	M         float64
	Softening float64
	Center    [3]float64
}

func NewCentralGravity(m float64) *CentralGravity {
	return &CentralGravity{G: 1.0, M: m, Softening: 1e-2}
}

func (cg *CentralGravity) Evaluate(p *dynamo.Field) (*dynamo.Field, error) {
	g := p.Grid()
	s := dynamo.NewField(g, p.Nq())
	eps2 := cg.Softening * cg.Softening
	for c := 0; c < g.Cells(); c++ {
		x := g.Center(c)
		var r [3]float64
		r2 := eps2
		for d := 0; d < g.Dim(); d++ {
			r[d] = x[d] - cg.Center[d]
			r2 += r[d] * r[d]
		}
		k := -cg.G * cg.M / (r2 * math.Sqrt(r2))
		accelerate(p.Cell(c), s.Cell(c), [3]float64{k * r[0], k * r[1], k * r[2]})
	}
	return s, nil
}

func (cg *CentralGravity) Advance(dt float64) {}

type mode struct {
	axis  int
	k     int
	phase float64
	amp   [3]float64
}

// Driving is a large-scale stochastic acceleration field. Each mode is a
// sinusoid along one active axis whose vector amplitude follows an
// Ornstein-Uhlenbeck process with correlation time Correlation.
type Driving struct {
	Amplitude   float64
	Correlation float64
	modes       []mode
	rng         *rand.Rand
}

func NewDriving(dim, modes int, amplitude, correlation float64, seed int64) *Driving {
	if modes < 1 {
		modes = 1
	}
	if correlation <= 0 {
		correlation = 1.0
	}
	d := &Driving{
		Amplitude:   amplitude,
		Correlation: correlation,
		rng:         rand.New(rand.NewSource(seed)),
	}
	for a := 0; a < dim; a++ {
		for k := 1; k <= modes; k++ {
			m := mode{axis: a, k: k, phase: 2 * math.Pi * d.rng.Float64()}
			for j := range m.amp {
				m.amp[j] = amplitude * d.rng.NormFloat64()
			}
			d.modes = append(d.modes, m)
		}
	}
	return d
}

func (dr *Driving) Evaluate(p *dynamo.Field) (*dynamo.Field, error) {
	g := p.Grid()
	s := dynamo.NewField(g, p.Nq())
	for c := 0; c < g.Cells(); c++ {
		x := g.Center(c)
		var a [3]float64
		for _, m := range dr.modes {
			ax := g.Axis(m.axis)
			w := math.Sin(2*math.Pi*float64(m.k)*(x[m.axis]-ax.Lo)/(ax.Hi-ax.Lo) + m.phase)
			for j := 0; j < g.Dim(); j++ {
				a[j] += m.amp[j] * w
			}
		}
		accelerate(p.Cell(c), s.Cell(c), a)
	}
	return s, nil
}

// Advance relaxes every mode amplitude toward zero and adds fresh noise
// with the stationary variance Amplitude^2.
func (dr *Driving) Advance(dt float64) {
	decay := math.Exp(-dt / dr.Correlation)
	kick := dr.Amplitude * math.Sqrt(1-decay*decay)
	for i := range dr.modes {
		for j := range dr.modes[i].amp {
			dr.modes[i].amp[j] = decay*dr.modes[i].amp[j] + kick*dr.rng.NormFloat64()
		}
	}
}

// Sum combines several providers.
type Sum []dynamo.SourceTerms

func (s Sum) Evaluate(p *dynamo.Field) (*dynamo.Field, error) {
	total := dynamo.NewField(p.Grid(), p.Nq())
	for _, src := range s {
		part, err := src.Evaluate(p)
		if err != nil {
			return nil, err
		}
		if !total.SameShape(part) {
			return nil, dynamo.Configurationf("source contribution has %d values, want %d", len(part.Data()), len(total.Data()))
		}
		for i, v := range part.Data() {
			total.Data()[i] += v
		}
	}
	return total, nil
}

func (s Sum) Advance(dt float64) {
	for _, src := range s {
		src.Advance(dt)
	}
}
