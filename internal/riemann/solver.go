// Package riemann provides a reference intercell flux solver for ideal-gas lines.
package riemann

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/physics"
)

type Reconstruction uint

const (
	PCM Reconstruction = iota
	PLM
)

type Flux uint

const (
	HLL Flux = iota
	Rusanov
)

var (
	ReconstructionNames = map[string]Reconstruction{
		"pcm": PCM,
		"plm": PLM,
	}
	FluxNames = map[string]Flux{
		"hll":     HLL,
		"rusanov": Rusanov,
		"lax":     Rusanov,
	}
)

// Solver reconstructs face states along a line and applies an approximate
// Riemann solver. It holds no per-call state and is safe for concurrent use.
type Solver struct {
	Gamma          float64
	Reconstruction Reconstruction
	Flux           Flux
}

func New(gamma float64, reconstruction, flux string) (*Solver, error) {
	r, ok := ReconstructionNames[strings.ToLower(reconstruction)]
	if !ok {
		return nil, dynamo.Configurationf("unknown reconstruction %q (available: %v)", reconstruction, names(ReconstructionNames))
	}
	f, ok := FluxNames[strings.ToLower(flux)]
	if !ok {
		return nil, dynamo.Configurationf("unknown riemann solver %q (available: %v)", flux, names(FluxNames))
	}
	if gamma <= 1 {
		gamma = physics.DefaultGamma
	}
	return &Solver{Gamma: gamma, Reconstruction: r, Flux: f}, nil
}

func names[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IntercellFlux returns the flux at the N-1 faces between the N states of line.
// Face i lies between states i and i+1.
func (s *Solver) IntercellFlux(line [][]float64, axis int) ([][]float64, error) {
	n := len(line)
	if n < 2 {
		return nil, dynamo.Configurationf("line of %d states has no faces", n)
	}
	if axis < 0 || axis > 2 {
		return nil, dynamo.Configurationf("axis %d out of range", axis)
	}
	for i, p := range line {
		if len(p) < dynamo.NumQ {
			return nil, fmt.Errorf("riemann: state %d has %d quantities: %w", i, len(p), dynamo.ErrConfiguration)
		}
	}

	var slopes [][]float64
	if s.Reconstruction == PLM {
		slopes = s.minmodSlopes(line)
	}

	fluxes := make([][]float64, n-1)
	pl := make([]float64, dynamo.NumQ)
	pr := make([]float64, dynamo.NumQ)
	for i := 0; i < n-1; i++ {
		copy(pl, line[i])
		copy(pr, line[i+1])
		if slopes != nil {
			for q := 0; q < dynamo.NumQ; q++ {
				pl[q] += 0.5 * slopes[i][q]
				pr[q] -= 0.5 * slopes[i+1][q]
			}
		}
		f := make([]float64, dynamo.NumQ)
		switch s.Flux {
		case Rusanov:
			s.rusanov(pl, pr, axis, f)
		default:
			s.hll(pl, pr, axis, f)
		}
		fluxes[i] = f
	}
	return fluxes, nil
}

// minmodSlopes limits the cell differences; the end cells get zero slope.
func (s *Solver) minmodSlopes(line [][]float64) [][]float64 {
	n := len(line)
	slopes := make([][]float64, n)
	slopes[0] = make([]float64, dynamo.NumQ)
	slopes[n-1] = make([]float64, dynamo.NumQ)
	for i := 1; i < n-1; i++ {
		d := make([]float64, dynamo.NumQ)
		for q := 0; q < dynamo.NumQ; q++ {
			d[q] = minmod(line[i][q]-line[i-1][q], line[i+1][q]-line[i][q])
		}
		slopes[i] = d
	}
	return slopes
}

func minmod(a, b float64) float64 {
	if a*b <= 0 {
		return 0
	}
	if math.Abs(a) < math.Abs(b) {
		return a
	}
	return b
}

func (s *Solver) hll(pl, pr []float64, axis int, f []float64) {
	var ul, ur, fl, fr [dynamo.NumQ]float64
	physics.PrimToCons(s.Gamma, pl, ul[:])
	physics.PrimToCons(s.Gamma, pr, ur[:])
	physics.Flux(s.Gamma, pl, axis, fl[:])
	physics.Flux(s.Gamma, pr, axis, fr[:])

	vl, vr := pl[dynamo.VelocityX+axis], pr[dynamo.VelocityX+axis]
	cl, cr := physics.SoundSpeed(s.Gamma, pl), physics.SoundSpeed(s.Gamma, pr)
	sl := math.Min(vl-cl, vr-cr)
	sr := math.Max(vl+cl, vr+cr)

	switch {
	case sl >= 0:
		copy(f, fl[:])
	case sr <= 0:
		copy(f, fr[:])
	default:
		for q := 0; q < dynamo.NumQ; q++ {
			f[q] = (sr*fl[q] - sl*fr[q] + sl*sr*(ur[q]-ul[q])) / (sr - sl)
		}
	}
}

func (s *Solver) rusanov(pl, pr []float64, axis int, f []float64) {
	var ul, ur, fl, fr [dynamo.NumQ]float64
	physics.PrimToCons(s.Gamma, pl, ul[:])
	physics.PrimToCons(s.Gamma, pr, ur[:])
	physics.Flux(s.Gamma, pl, axis, fl[:])
	physics.Flux(s.Gamma, pr, axis, fr[:])

	al := math.Abs(pl[dynamo.VelocityX+axis]) + physics.SoundSpeed(s.Gamma, pl)
	ar := math.Abs(pr[dynamo.VelocityX+axis]) + physics.SoundSpeed(s.Gamma, pr)
	a := math.Max(al, ar)
	for q := 0; q < dynamo.NumQ; q++ {
		f[q] = 0.5*(fl[q]+fr[q]) - 0.5*a*(ur[q]-ul[q])
	}
}
