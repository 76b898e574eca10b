package riemann

import (
	"errors"
	"math"
	"testing"

	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/physics"
)

func uniformLine(n int, p []float64) [][]float64 {
	line := make([][]float64, n)
	for i := range line {
		line[i] = append([]float64(nil), p...)
	}
	return line
}

func TestIntercellFlux_UniformEqualsPhysicalFlux(t *testing.T) {
	state := []float64{1.0, 1.0, 0.3, -0.2, 0.1}
	for _, recon := range []string{"pcm", "plm"} {
		for _, flux := range []string{"hll", "rusanov"} {
			s, err := New(1.4, recon, flux)
			if err != nil {
				t.Fatalf("New(%s,%s): %v", recon, flux, err)
			}
			for axis := 0; axis < 3; axis++ {
				fluxes, err := s.IntercellFlux(uniformLine(8, state), axis)
				if err != nil {
					t.Fatalf("IntercellFlux: %v", err)
				}
				if len(fluxes) != 7 {
					t.Fatalf("expected 7 faces, got %d", len(fluxes))
				}
				want := make([]float64, dynamo.NumQ)
				physics.Flux(1.4, state, axis, want)
				for i, f := range fluxes {
					for q := range f {
						if math.Abs(f[q]-want[q]) > 1e-12 {
							t.Errorf("%s/%s axis %d face %d q %d: got %g want %g", recon, flux, axis, i, q, f[q], want[q])
						}
					}
					if i > 0 {
						for q := range f {
							if f[q] != fluxes[0][q] {
								t.Errorf("faces differ on a uniform line: %v vs %v", f, fluxes[0])
							}
						}
					}
				}
			}
		}
	}
}

func TestIntercellFlux_SupersonicUpwind(t *testing.T) {
	s, _ := New(1.4, "pcm", "hll")
	left := []float64{1.0, 1.0, 10.0, 0, 0}
	right := []float64{0.5, 0.5, 10.0, 0, 0}
	fluxes, err := s.IntercellFlux([][]float64{left, right}, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := make([]float64, dynamo.NumQ)
	physics.Flux(1.4, left, 0, want)
	for q := range want {
		if fluxes[0][q] != want[q] {
			t.Errorf("q %d: got %g want upwind %g", q, fluxes[0][q], want[q])
		}
	}
}

func TestIntercellFlux_Errors(t *testing.T) {
	s, _ := New(1.4, "plm", "hll")

	if _, err := s.IntercellFlux([][]float64{{1, 1, 0, 0, 0}}, 0); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("single state: expected configuration error, got %v", err)
	}
	if _, err := s.IntercellFlux(uniformLine(4, []float64{1, 1, 0, 0, 0}), 3); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("bad axis: expected configuration error, got %v", err)
	}
	if _, err := s.IntercellFlux([][]float64{{1, 1}, {1, 1}}, 0); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("short state: expected configuration error, got %v", err)
	}
}

func TestNew_UnknownNames(t *testing.T) {
	if _, err := New(1.4, "weno", "hll"); err == nil {
		t.Error("expected error for unknown reconstruction")
	}
	if _, err := New(1.4, "plm", "exact"); err == nil {
		t.Error("expected error for unknown riemann solver")
	}
}

func TestMinmod(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{1, 2, 1},
		{-3, -1, -1},
		{1, -1, 0},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := minmod(tt.a, tt.b); got != tt.want {
			t.Errorf("minmod(%g, %g) = %g, want %g", tt.a, tt.b, got, tt.want)
		}
	}
}
