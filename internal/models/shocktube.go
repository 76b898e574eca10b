package models

import "github.com/darien0/fish/internal/dynamo"

// ShockTube is a planar discontinuity at X between two resting states.
type ShockTube struct {
	X        float64
	RhoLeft  float64
	PreLeft  float64
	RhoRight float64
	PreRight float64
}

func NewShockTube() *ShockTube {
	return &ShockTube{
		X:        0.0,
		RhoLeft:  1.0,
		PreLeft:  1.0,
		RhoRight: 0.125,
		PreRight: 0.1,
	}
}

func (s *ShockTube) Name() string { return "shocktube" }

func (s *ShockTube) with(p map[string]float64) *ShockTube {
	set(&s.X, p, "x")
	set(&s.RhoLeft, p, "rho_l")
	set(&s.PreLeft, p, "p_l")
	set(&s.RhoRight, p, "rho_r")
	set(&s.PreRight, p, "p_r")
	return s
}

func (s *ShockTube) Primitive(x, y, z float64) [dynamo.NumQ]float64 {
	if x > s.X {
		return [dynamo.NumQ]float64{s.RhoRight, s.PreRight}
	}
	return [dynamo.NumQ]float64{s.RhoLeft, s.PreLeft}
}

// Explosion is a dense, high pressure sphere of squared radius R2 in a
// low pressure ambient medium.
type Explosion struct {
	R2      float64
	Inside  [2]float64
	Ambient [2]float64
}

func NewExplosion() *Explosion {
	return &Explosion{
		R2:      0.05,
		Inside:  [2]float64{1.0, 1.0},
		Ambient: [2]float64{0.125, 0.1},
	}
}

func (e *Explosion) Name() string { return "explosion" }

func (e *Explosion) with(p map[string]float64) *Explosion {
	set(&e.R2, p, "r2")
	set(&e.Inside[0], p, "rho_in")
	set(&e.Inside[1], p, "p_in")
	set(&e.Ambient[0], p, "rho_out")
	set(&e.Ambient[1], p, "p_out")
	return e
}

func (e *Explosion) Primitive(x, y, z float64) [dynamo.NumQ]float64 {
	if x*x+y*y+z*z > e.R2 {
		return [dynamo.NumQ]float64{e.Ambient[0], e.Ambient[1]}
	}
	return [dynamo.NumQ]float64{e.Inside[0], e.Inside[1]}
}
