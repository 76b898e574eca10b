// Package metrics holds per-iteration measurements of the fluid and the
// scalar metrics summarized from them.
package metrics

import (
	"sort"
	"sync"

	"github.com/darien0/fish/internal/dynamo"
)

// Measurement is a snapshot of interior diagnostics at one iteration.
type Measurement struct {
	Iteration    int                  `json:"iteration"`
	Time         float64              `json:"time"`
	Kinetic      float64              `json:"kinetic"`
	DensityMax   float64              `json:"density_max"`
	DensityMin   float64              `json:"density_min"`
	ConservedAvg [dynamo.NumQ]float64 `json:"conserved_avg"`
	PrimitiveAvg [dynamo.NumQ]float64 `json:"primitive_avg"`
	Message      string               `json:"message"`
}

// Log is an append-only record of measurements keyed by strictly increasing
// iteration number.
type Log struct {
	mu      sync.RWMutex
	entries []Measurement
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Append(m Measurement) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := len(l.entries); n > 0 && m.Iteration <= l.entries[n-1].Iteration {
		return dynamo.Configurationf("measurement iteration %d does not follow %d",
			m.Iteration, l.entries[n-1].Iteration)
	}
	l.entries = append(l.entries, m)
	return nil
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a copy of the recorded measurements in iteration order.
func (l *Log) Entries() []Measurement {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Measurement, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Get(iteration int) (Measurement, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := sort.Search(len(l.entries), func(i int) bool { return l.entries[i].Iteration >= iteration })
	if i < len(l.entries) && l.entries[i].Iteration == iteration {
		return l.entries[i], true
	}
	return Measurement{}, false
}

func (l *Log) Last() (Measurement, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return Measurement{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Series extracts one scalar per measurement, in order.
func (l *Log) Series(f func(Measurement) float64) []float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]float64, len(l.entries))
	for i, m := range l.entries {
		out[i] = f(m)
	}
	return out
}

// Fields maps a measurement name to its scalar accessor.
var Fields = map[string]func(Measurement) float64{
	"kinetic":     func(m Measurement) float64 { return m.Kinetic },
	"density_max": func(m Measurement) float64 { return m.DensityMax },
	"density_min": func(m Measurement) float64 { return m.DensityMin },
	"mass":        func(m Measurement) float64 { return m.ConservedAvg[dynamo.Density] },
	"energy":      func(m Measurement) float64 { return m.ConservedAvg[dynamo.Energy] },
	"time":        func(m Measurement) float64 { return m.Time },
}
