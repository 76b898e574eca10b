package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestNewGrid_Shape(t *testing.T) {
	g, err := NewGrid([]int{4, 2}, []float64{-1, 0}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if g.Dim() != 2 || g.NG() != GuardZones {
		t.Fatalf("dim=%d ng=%d", g.Dim(), g.NG())
	}
	want := []int{4 + 2*GuardZones, 2 + 2*GuardZones}
	for a, n := range g.Shape() {
		if n != want[a] {
			t.Errorf("axis %d: %d cells, want %d", a, n, want[a])
		}
	}
	if g.Cells() != want[0]*want[1] {
		t.Errorf("cells = %d", g.Cells())
	}
	if g.InteriorCells() != 8 {
		t.Errorf("interior cells = %d", g.InteriorCells())
	}
	if g.Stride(1) != 1 || g.Stride(0) != want[1] {
		t.Errorf("strides = %d, %d", g.Stride(0), g.Stride(1))
	}
	if g.Spacing(0) != 0.5 || g.MinSpacing() != 0.5 {
		t.Errorf("spacing = %g, min %g", g.Spacing(0), g.MinSpacing())
	}
}

func TestNewGrid_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		interior []int
		lo, hi   []float64
	}{
		{"no axes", nil, nil, nil},
		{"four axes", []int{2, 2, 2, 2}, []float64{0, 0, 0, 0}, []float64{1, 1, 1, 1}},
		{"short bounds", []int{2, 2}, []float64{0}, []float64{1}},
		{"empty axis", []int{0}, []float64{0}, []float64{1}},
		{"inverted extent", []int{4}, []float64{1}, []float64{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.interior, tt.lo, tt.hi)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("got %v, want configuration error", err)
			}
		})
	}
}

func TestGrid_CenterAndIndex(t *testing.T) {
	g, _ := NewGrid([]int{4, 2}, []float64{-1, 0}, []float64{1, 1})
	ng := g.NG()

	c := g.Index(ng, ng+1)
	x := g.Center(c)
	if math.Abs(x[0]+0.75) > 1e-15 || math.Abs(x[1]-0.75) > 1e-15 || x[2] != 0 {
		t.Errorf("center = %v", x)
	}
	if !g.IsInterior(c) {
		t.Error("first interior cell reported as guard")
	}
	if g.IsInterior(g.Index(ng-1, ng)) {
		t.Error("guard cell reported as interior")
	}

	idx := make([]int, 2)
	g.Unflatten(c, idx)
	if idx[0] != ng || idx[1] != ng+1 {
		t.Errorf("unflatten = %v", idx)
	}

	x = g.Center(g.Index(0, 0))
	if math.Abs(x[0]-(-1-2.5*0.5)) > 1e-15 {
		t.Errorf("guard center x = %g", x[0])
	}
}

func TestGrid_ForEachInterior(t *testing.T) {
	g, _ := NewGrid([]int{3, 2, 2}, []float64{0, 0, 0}, []float64{1, 1, 1})
	ig := g.Interior()
	n := 0
	g.ForEachInterior(func(c, ic int) {
		if ic != n {
			t.Fatalf("interior index %d visited at position %d", ic, n)
		}
		if !g.IsInterior(c) {
			t.Fatalf("cell %d is not interior", c)
		}
		if g.Center(c) != ig.Center(ic) {
			t.Fatalf("centers differ: %v vs %v", g.Center(c), ig.Center(ic))
		}
		n++
	})
	if n != 12 || ig.Cells() != 12 || ig.NG() != 0 {
		t.Errorf("visited %d cells, interior grid has %d", n, ig.Cells())
	}
}

func TestGrid_Lines(t *testing.T) {
	g, _ := NewGrid([]int{4, 2}, []float64{0, 0}, []float64{1, 1})
	if got := len(g.Lines(0)); got != 2 {
		t.Errorf("axis 0 lines = %d, want 2", got)
	}
	if got := len(g.Lines(1)); got != 4 {
		t.Errorf("axis 1 lines = %d, want 4", got)
	}
	if got := len(g.GuardedLines(0)); got != 2+2*GuardZones {
		t.Errorf("guarded axis 0 lines = %d", got)
	}
	for _, start := range g.Lines(1) {
		idx := make([]int, 2)
		g.Unflatten(start, idx)
		if idx[1] != 0 || idx[0] < g.NG() || idx[0] >= g.Axis(0).N-g.NG() {
			t.Errorf("line start %v", idx)
		}
	}
}
