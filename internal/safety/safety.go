// Package safety detects and optionally repairs non-physical fluid states.
package safety

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/darien0/fish/internal/dynamo"
)

type Mode int

const (
	Strict Mode = iota
	Repair
)

func (m Mode) String() string {
	if m == Repair {
		return "repair"
	}
	return "strict"
}

// DefaultFloor replaces negative density or pressure in repair mode.
const DefaultFloor = 1e-3

// Report counts the repaired cells per field.
type Report struct {
	Density  int
	Pressure int
}

func (r Report) Total() int { return r.Density + r.Pressure }

type Validator struct {
	Mode  Mode
	Floor float64
	log   zerolog.Logger
}

func New(mode Mode, logger zerolog.Logger) *Validator {
	return &Validator{Mode: mode, Floor: DefaultFloor, log: logger}
}

var checked = []struct {
	name string
	q    int
}{
	{"density", dynamo.Density},
	{"pressure", dynamo.Pressure},
}

// Validate scans the primitive array of state. In strict mode a violation
// returns *dynamo.UnphysicalStateError and nothing is modified. In repair mode
// violating values are set to Floor and handed back through SetPrimitive.
func (v *Validator) Validate(state dynamo.FluidState) (Report, error) {
	p := state.Primitive()
	nq := p.Nq()
	data := p.Data()

	if v.Mode == Strict {
		for _, c := range checked {
			count, first := 0, -1
			for i := c.q; i < len(data); i += nq {
				if bad(data[i]) {
					if first < 0 {
						first = i / nq
					}
					count++
				}
			}
			if count > 0 {
				return Report{}, &dynamo.UnphysicalStateError{
					Field: c.name,
					Count: count,
					Cell:  first,
					Value: data[first*nq+c.q],
				}
			}
		}
		return Report{}, nil
	}

	var rep Report
	for _, c := range checked {
		count := 0
		for i := c.q; i < len(data); i += nq {
			if bad(data[i]) {
				data[i] = v.Floor
				count++
			}
		}
		if count == 0 {
			continue
		}
		if c.q == dynamo.Density {
			rep.Density = count
		} else {
			rep.Pressure = count
		}
		v.log.Warn().Str("field", c.name).Int("cells", count).Float64("floor", v.Floor).Msg("applied floor")
	}
	if rep.Total() > 0 {
		if err := state.SetPrimitive(p); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func bad(x float64) bool {
	return x < 0 || math.IsNaN(x)
}
