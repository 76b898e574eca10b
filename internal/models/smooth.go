package models

import (
	"math"

	"github.com/darien0/fish/internal/dynamo"
)

type Uniform struct {
	State [dynamo.NumQ]float64
}

func NewUniform() *Uniform {
	return &Uniform{State: [dynamo.NumQ]float64{1.0, 1.0}}
}

func (u *Uniform) Name() string { return "uniform" }

func (u *Uniform) with(p map[string]float64) *Uniform {
	set(&u.State[dynamo.Density], p, "rho")
	set(&u.State[dynamo.Pressure], p, "p")
	set(&u.State[dynamo.VelocityX], p, "vx")
	set(&u.State[dynamo.VelocityX+1], p, "vy")
	set(&u.State[dynamo.VelocityX+2], p, "vz")
	return u
}

func (u *Uniform) Primitive(x, y, z float64) [dynamo.NumQ]float64 {
	return u.State
}

// SmoothWave is a sinusoidal density perturbation carried at uniform
// velocity and pressure. It is advected without change of shape, so the
// exact solution at time t is the initial profile shifted by Velocity*t.
type SmoothWave struct {
	Amplitude  float64
	Wavelength float64
	Velocity   float64
	Pressure   float64
	Offset     float64
}

func NewSmoothWave() *SmoothWave {
	return &SmoothWave{
		Amplitude:  0.2,
		Wavelength: 1.0,
		Velocity:   1.0,
		Pressure:   1.0,
	}
}

func (w *SmoothWave) Name() string { return "smooth_wave" }

func (w *SmoothWave) with(p map[string]float64) *SmoothWave {
	set(&w.Amplitude, p, "amplitude")
	set(&w.Wavelength, p, "wavelength")
	set(&w.Velocity, p, "v")
	set(&w.Pressure, p, "p")
	return w
}

// At returns the exact solution at time t.
func (w *SmoothWave) At(t float64) *SmoothWave {
	c := *w
	c.Offset = w.Offset + w.Velocity*t
	return &c
}

func (w *SmoothWave) Primitive(x, y, z float64) [dynamo.NumQ]float64 {
	rho := 1.0 + w.Amplitude*math.Sin(2*math.Pi*(x-w.Offset)/w.Wavelength)
	return [dynamo.NumQ]float64{rho, w.Pressure, w.Velocity}
}
