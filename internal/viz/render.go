package viz

import (
	"strings"

	"github.com/darien0/fish/internal/dynamo"
)

const shades = " .:-=+*#%@"

// densityProfile returns the interior density along axis 0, through the
// middle of any other axes.
func densityProfile(p *dynamo.Field) []float64 {
	ip := p.Interior()
	g := ip.Grid()
	shape := g.InteriorShape()
	idx := make([]int, g.Dim())
	for a := 1; a < g.Dim(); a++ {
		idx[a] = shape[a] / 2
	}
	out := make([]float64, shape[0])
	for i := range out {
		idx[0] = i
		out[i] = ip.Cell(g.Index(idx...))[dynamo.Density]
	}
	return out
}

// densityMap shades the interior density of the middle z slice of a 2D or
// 3D field, with at most cols x rows characters. y increases upwards.
func densityMap(p *dynamo.Field, cols, rows int) string {
	ip := p.Interior()
	g := ip.Grid()
	shape := g.InteriorShape()
	nx, ny := shape[0], shape[1]
	idx := make([]int, g.Dim())
	if g.Dim() == 3 {
		idx[2] = shape[2] / 2
	}

	values := make([]float64, 0, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			idx[0], idx[1] = i, j
			values = append(values, ip.Cell(g.Index(idx...))[dynamo.Density])
		}
	}
	lo, hi := bounds(values)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	cols, rows = min(cols, nx), min(rows, ny)
	var b strings.Builder
	for r := rows - 1; r >= 0; r-- {
		j := r * ny / rows
		for c := 0; c < cols; c++ {
			i := c * nx / cols
			v := values[i*ny+j]
			b.WriteByte(shades[int((v-lo)/span*float64(len(shades)-1))])
		}
		if r > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
