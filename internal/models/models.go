// Package models provides initial conditions for the gas dynamics solver.
package models

import (
	"fmt"
	"sort"

	"github.com/darien0/fish/internal/dynamo"
)

// Model gives the primitive state at a point.
type Model interface {
	Name() string
	Primitive(x, y, z float64) [dynamo.NumQ]float64
}

// Func adapts m for Operator.InitialModel.
func Func(m Model) dynamo.PrimitiveFunc {
	return m.Primitive
}

var catalog = map[string]func(params map[string]float64) Model{
	"shocktube":    func(p map[string]float64) Model { return NewShockTube().with(p) },
	"brio_wu":      func(p map[string]float64) Model { return NewShockTube().with(p) },
	"sod":          func(p map[string]float64) Model { return NewShockTube().with(p) },
	"explosion":    func(p map[string]float64) Model { return NewExplosion().with(p) },
	"polytrope":    func(p map[string]float64) Model { return NewPolytrope().with(p) },
	"central_mass": func(p map[string]float64) Model { return NewCentralMass().with(p) },
	"uniform":      func(p map[string]float64) Model { return NewUniform().with(p) },
	"smooth_wave":  func(p map[string]float64) Model { return NewSmoothWave().with(p) },
}

// Get returns the named model with parameters overridden from params.
func Get(name string, params map[string]float64) (Model, error) {
	fn, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown initial model: %s", name)
	}
	return fn(params), nil
}

func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func set(dst *float64, params map[string]float64, key string) {
	if v, ok := params[key]; ok {
		*dst = v
	}
}
