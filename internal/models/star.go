package models

import (
	"math"

	"github.com/darien0/fish/internal/dynamo"
)

// Polytrope is an n=1 polytropic star in hydrostatic balance under its own
// gravity, surrounded by a density floor.
type Polytrope struct {
	RhoCentral float64
	RhoFloor   float64
	G          float64
	Radius     float64
}

func NewPolytrope() *Polytrope {
	return &Polytrope{
		RhoCentral: 1.0,
		RhoFloor:   1e-3,
		G:          1.0,
		Radius:     0.3,
	}
}

func (p *Polytrope) Name() string { return "polytrope" }

func (p *Polytrope) with(params map[string]float64) *Polytrope {
	set(&p.RhoCentral, params, "rho_c")
	set(&p.RhoFloor, params, "rho_floor")
	set(&p.G, params, "G")
	set(&p.Radius, params, "radius")
	return p
}

func (p *Polytrope) Primitive(x, y, z float64) [dynamo.NumQ]float64 {
	const n = 1.0
	a := p.Radius / math.Pi
	k := 4 * math.Pi * p.G * a * a / ((n + 1) * math.Pow(p.RhoCentral, 1.0/n-1.0))
	r := math.Sqrt(x*x+y*y+z*z) / a

	var rho float64
	switch {
	case r < 1e-6:
		rho = p.RhoCentral
	case r >= math.Pi:
		rho = p.RhoFloor
	default:
		rho = p.RhoCentral * math.Sin(r) / r
	}
	return [dynamo.NumQ]float64{rho, k * rho * rho}
}

// CentralMass is a uniform dense core of radius Radius/2 at unit pressure.
type CentralMass struct {
	RhoCentral float64
	RhoFloor   float64
	Radius     float64
	Pressure   float64
}

func NewCentralMass() *CentralMass {
	return &CentralMass{
		RhoCentral: 1.0,
		RhoFloor:   1e-2,
		Radius:     0.3,
		Pressure:   1.0,
	}
}

func (c *CentralMass) Name() string { return "central_mass" }

func (c *CentralMass) with(params map[string]float64) *CentralMass {
	set(&c.RhoCentral, params, "rho_c")
	set(&c.RhoFloor, params, "rho_floor")
	set(&c.Radius, params, "radius")
	set(&c.Pressure, params, "p")
	return c
}

func (c *CentralMass) Primitive(x, y, z float64) [dynamo.NumQ]float64 {
	rho := c.RhoFloor
	if math.Sqrt(x*x+y*y+z*z)/c.Radius < 0.5 {
		rho = c.RhoCentral
	}
	return [dynamo.NumQ]float64{rho, c.Pressure}
}
