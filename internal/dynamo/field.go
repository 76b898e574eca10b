package dynamo

import "math"

// Field stores nq quantities per grid cell, cell-major.
type Field struct {
	grid *Grid
	nq   int
	data []float64
}

func NewField(g *Grid, nq int) *Field {
	return &Field{grid: g, nq: nq, data: make([]float64, g.Cells()*nq)}
}

// FieldFrom wraps data, which must hold exactly g.Cells()*nq values.
func FieldFrom(g *Grid, nq int, data []float64) (*Field, error) {
	if len(data) != g.Cells()*nq {
		return nil, Configurationf("field data has %d values, grid needs %d", len(data), g.Cells()*nq)
	}
	return &Field{grid: g, nq: nq, data: data}, nil
}

func (f *Field) Grid() *Grid     { return f.grid }
func (f *Field) Nq() int         { return f.nq }
func (f *Field) Data() []float64 { return f.data }

func (f *Field) Cell(c int) []float64 {
	return f.data[c*f.nq : (c+1)*f.nq : (c+1)*f.nq]
}

func (f *Field) Clone() *Field {
	c := &Field{grid: f.grid, nq: f.nq, data: make([]float64, len(f.data))}
	copy(c.data, f.data)
	return c
}

func (f *Field) SameShape(o *Field) bool {
	return o != nil && f.nq == o.nq && len(f.data) == len(o.data)
}

func (f *Field) CopyFrom(src *Field) error {
	if !f.SameShape(src) {
		return Configurationf("copy between fields of %d and %d values", len(src.data), len(f.data))
	}
	copy(f.data, src.data)
	return nil
}

func (f *Field) Zero() {
	for i := range f.data {
		f.data[i] = 0
	}
}

func (f *Field) IsFinite() bool {
	for _, v := range f.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Interior copies the interior cells into a field over the guard-free grid.
func (f *Field) Interior() *Field {
	out := NewField(f.grid.Interior(), f.nq)
	f.grid.ForEachInterior(func(c, ic int) {
		copy(out.Cell(ic), f.Cell(c))
	})
	return out
}

// AddInterior adds an interior-shaped field into the interior cells of f.
func (f *Field) AddInterior(src *Field) error {
	if src.nq != f.nq || src.grid.Cells() != f.grid.InteriorCells() {
		return Configurationf("interior contribution has %d cells x %d, want %d x %d",
			src.grid.Cells(), src.nq, f.grid.InteriorCells(), f.nq)
	}
	f.grid.ForEachInterior(func(c, ic int) {
		dst, s := f.Cell(c), src.Cell(ic)
		for q := range dst {
			dst[q] += s[q]
		}
	})
	return nil
}
