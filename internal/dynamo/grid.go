package dynamo

import "math"

// GuardZones is the ghost-zone width on every side of every active axis.
const GuardZones = 3

// Axis describes one active grid direction. N counts guard cells.
type Axis struct {
	N  int
	Lo float64
	Hi float64
	Dx float64
}

// Interior returns the number of physical cells along the axis.
func (a Axis) Interior(ng int) int {
	return a.N - 2*ng
}

type Grid struct {
	axes    []Axis
	ng      int
	strides []int
	cells   int
}

// NewGrid builds a grid from per-axis interior cell counts and domain bounds.
// lo and hi may be longer than interior; extra entries are ignored.
func NewGrid(interior []int, lo, hi []float64) (*Grid, error) {
	return newGrid(interior, lo, hi, GuardZones)
}

func newGrid(interior []int, lo, hi []float64, ng int) (*Grid, error) {
	dim := len(interior)
	if dim < 1 || dim > 3 {
		return nil, Configurationf("dimensionality %d not in [1,3]", dim)
	}
	if len(lo) < dim || len(hi) < dim {
		return nil, Configurationf("bounds have %d/%d entries for %d axes", len(lo), len(hi), dim)
	}

	g := &Grid{
		axes:    make([]Axis, dim),
		ng:      ng,
		strides: make([]int, dim),
	}
	for a := 0; a < dim; a++ {
		if interior[a] < 1 {
			return nil, Configurationf("axis %d has %d interior cells", a, interior[a])
		}
		if !(hi[a] > lo[a]) {
			return nil, Configurationf("axis %d has empty extent [%g, %g]", a, lo[a], hi[a])
		}
		g.axes[a] = Axis{
			N:  interior[a] + 2*ng,
			Lo: lo[a],
			Hi: hi[a],
			Dx: (hi[a] - lo[a]) / float64(interior[a]),
		}
	}

	stride := 1
	for a := dim - 1; a >= 0; a-- {
		g.strides[a] = stride
		stride *= g.axes[a].N
	}
	g.cells = stride
	return g, nil
}

func (g *Grid) Dim() int         { return len(g.axes) }
func (g *Grid) NG() int          { return g.ng }
func (g *Grid) Cells() int       { return g.cells }
func (g *Grid) Axis(a int) Axis  { return g.axes[a] }
func (g *Grid) Stride(a int) int { return g.strides[a] }

func (g *Grid) Spacing(a int) float64 { return g.axes[a].Dx }

// Shape returns the per-axis cell counts including guards.
func (g *Grid) Shape() []int {
	s := make([]int, len(g.axes))
	for a, ax := range g.axes {
		s[a] = ax.N
	}
	return s
}

// InteriorShape returns the per-axis physical cell counts.
func (g *Grid) InteriorShape() []int {
	s := make([]int, len(g.axes))
	for a, ax := range g.axes {
		s[a] = ax.Interior(g.ng)
	}
	return s
}

func (g *Grid) InteriorCells() int {
	n := 1
	for _, ax := range g.axes {
		n *= ax.Interior(g.ng)
	}
	return n
}

func (g *Grid) MinSpacing() float64 {
	m := math.Inf(1)
	for _, ax := range g.axes {
		m = math.Min(m, ax.Dx)
	}
	return m
}

// Index flattens per-axis indices (guards included) to a cell index.
func (g *Grid) Index(idx ...int) int {
	c := 0
	for a := range g.axes {
		c += idx[a] * g.strides[a]
	}
	return c
}

// Unflatten writes the per-axis indices of cell c into idx.
func (g *Grid) Unflatten(c int, idx []int) {
	for a := range g.axes {
		idx[a] = c / g.strides[a]
		c -= idx[a] * g.strides[a]
	}
}

// Center returns the cell-center coordinates of cell c. Inactive axes are zero.
func (g *Grid) Center(c int) [3]float64 {
	var x [3]float64
	for a, ax := range g.axes {
		i := c / g.strides[a]
		c -= i * g.strides[a]
		x[a] = ax.Lo + (float64(i-g.ng)+0.5)*ax.Dx
	}
	return x
}

func (g *Grid) IsInterior(c int) bool {
	for a, ax := range g.axes {
		i := c / g.strides[a]
		c -= i * g.strides[a]
		if i < g.ng || i >= ax.N-g.ng {
			return false
		}
	}
	return true
}

// Interior returns a guard-free grid covering the same physical domain.
func (g *Grid) Interior() *Grid {
	lo := make([]float64, len(g.axes))
	hi := make([]float64, len(g.axes))
	for a, ax := range g.axes {
		lo[a], hi[a] = ax.Lo, ax.Hi
	}
	ig, _ := newGrid(g.InteriorShape(), lo, hi, 0)
	return ig
}

// ForEachInterior calls fn with the full-grid cell index and the matching
// guard-free cell index of every interior cell, in row-major order.
func (g *Grid) ForEachInterior(fn func(c, ic int)) {
	ranges := make([][2]int, len(g.axes))
	for a, ax := range g.axes {
		ranges[a] = [2]int{g.ng, ax.N - g.ng}
	}
	ic := 0
	g.walk(ranges, func(c int) {
		fn(c, ic)
		ic++
	})
}

// Lines returns the first cell of every line along axis whose transverse
// indices are interior. Cell k of a line is start + k*Stride(axis).
func (g *Grid) Lines(axis int) []int {
	return g.lines(axis, g.ng)
}

// GuardedLines is like Lines but also includes lines whose transverse
// indices fall in guard zones.
func (g *Grid) GuardedLines(axis int) []int {
	return g.lines(axis, 0)
}

func (g *Grid) lines(axis, margin int) []int {
	ranges := make([][2]int, len(g.axes))
	n := 1
	for a, ax := range g.axes {
		if a == axis {
			ranges[a] = [2]int{0, 1}
			continue
		}
		ranges[a] = [2]int{margin, ax.N - margin}
		n *= ax.N - 2*margin
	}
	starts := make([]int, 0, n)
	g.walk(ranges, func(c int) {
		starts = append(starts, c)
	})
	return starts
}

// walk visits every cell of the per-axis half-open index ranges in row-major order.
func (g *Grid) walk(ranges [][2]int, fn func(c int)) {
	dim := len(ranges)
	idx := make([]int, dim)
	for a := range ranges {
		if ranges[a][0] >= ranges[a][1] {
			return
		}
		idx[a] = ranges[a][0]
	}
	for {
		fn(g.Index(idx...))
		a := dim - 1
		for ; a >= 0; a-- {
			idx[a]++
			if idx[a] < ranges[a][1] {
				break
			}
			idx[a] = ranges[a][0]
		}
		if a < 0 {
			return
		}
	}
}
