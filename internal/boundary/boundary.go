// Package boundary fills guard zones from interior values.
//
// Every policy is a per-line rule applied axis by axis, so the same code
// serves 1, 2 and 3 dimensional grids. Lines are taken over the full
// transverse extent, guards included, which fills edge and corner zones from
// values set by the earlier axes.
package boundary

import (
	"sort"
	"strings"

	"github.com/darien0/fish/internal/dynamo"
)

// Line is a view of one line of cells along an axis.
type Line struct {
	data   []float64
	start  int
	stride int
	nq     int
	N      int
	NG     int
	Axis   int
}

func (l Line) Cell(i int) []float64 {
	off := (l.start + i*l.stride) * l.nq
	return l.data[off : off+l.nq]
}

// Rule fills the NG ghost cells at both ends of a line.
type Rule func(l Line)

// Condition applies one rule per axis. A single rule applies to every axis.
type Condition struct {
	Name  string
	Rules []Rule
}

func (c *Condition) Apply(f *dynamo.Field) {
	g := f.Grid()
	if g.NG() == 0 {
		return
	}
	for a := 0; a < g.Dim(); a++ {
		rule := c.rule(a)
		for _, start := range g.GuardedLines(a) {
			rule(Line{
				data:   f.Data(),
				start:  start,
				stride: g.Stride(a),
				nq:     f.Nq(),
				N:      g.Axis(a).N,
				NG:     g.NG(),
				Axis:   a,
			})
		}
	}
}

func (c *Condition) rule(axis int) Rule {
	if axis < len(c.Rules) {
		return c.Rules[axis]
	}
	return c.Rules[len(c.Rules)-1]
}

// Outflow replicates the nearest interior cell into every ghost layer.
func Outflow(l Line) {
	lo, hi := l.Cell(l.NG), l.Cell(l.N-l.NG-1)
	for i := 0; i < l.NG; i++ {
		copy(l.Cell(i), lo)
		copy(l.Cell(l.N-1-i), hi)
	}
}

// Periodic copies from the opposite edge of the interior.
func Periodic(l Line) {
	n := l.N - 2*l.NG
	for i := 0; i < l.NG; i++ {
		copy(l.Cell(i), l.Cell(i+n))
		copy(l.Cell(l.N-1-i), l.Cell(l.N-1-i-n))
	}
}

// Reflecting mirrors the interior and negates the momentum (or velocity)
// component normal to the boundary.
func Reflecting(l Line) {
	q := dynamo.MomentumX + l.Axis
	for i := 0; i < l.NG; i++ {
		lo, hi := l.Cell(i), l.Cell(l.N-1-i)
		copy(lo, l.Cell(2*l.NG-1-i))
		copy(hi, l.Cell(l.N-2*l.NG+i))
		if q < l.nq {
			lo[q] = -lo[q]
			hi[q] = -hi[q]
		}
	}
}

var Rules = map[string]Rule{
	"outflow":    Outflow,
	"periodic":   Periodic,
	"reflecting": Reflecting,
}

func NewOutflow() *Condition {
	return &Condition{Name: "outflow", Rules: []Rule{Outflow}}
}

func NewPeriodic() *Condition {
	return &Condition{Name: "periodic", Rules: []Rule{Periodic}}
}

// New builds a condition from one policy name for all axes or one per axis.
func New(names ...string) (*Condition, error) {
	if len(names) == 0 {
		return NewOutflow(), nil
	}
	c := &Condition{Name: strings.Join(names, ",")}
	for _, name := range names {
		rule, ok := Rules[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, dynamo.Configurationf("unknown boundary condition %q (available: %v)", name, available())
		}
		c.Rules = append(c.Rules, rule)
	}
	return c, nil
}

func available() []string {
	out := make([]string, 0, len(Rules))
	for k := range Rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
