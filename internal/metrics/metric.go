package metrics

import "math"

// Metric reduces the stream of measurements to a single value.
type Metric interface {
	Name() string
	Observe(m Measurement)
	Value() float64
	Reset()
}

// MeanKinetic is the time-sample mean of the kinetic measurement.
type MeanKinetic struct {
	total   float64
	samples int
}

func NewMeanKinetic() *MeanKinetic { return &MeanKinetic{} }

func (k *MeanKinetic) Name() string { return "mean_kinetic" }

func (k *MeanKinetic) Observe(m Measurement) {
	k.total += m.Kinetic
	k.samples++
}

func (k *MeanKinetic) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *MeanKinetic) Reset() { *k = MeanKinetic{} }

// ConservationDrift tracks the largest relative departure of one conserved
// average from its first observed value.
type ConservationDrift struct {
	name     string
	q        int
	initial  float64
	maxDrift float64
	samples  int
}

func NewConservationDrift(name string, q int) *ConservationDrift {
	return &ConservationDrift{name: name, q: q}
}

func (d *ConservationDrift) Name() string { return d.name }

func (d *ConservationDrift) Observe(m Measurement) {
	v := m.ConservedAvg[d.q]
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++
	if d.initial == 0 {
		return
	}
	if drift := math.Abs(v-d.initial) / math.Abs(d.initial); drift > d.maxDrift {
		d.maxDrift = drift
	}
}

func (d *ConservationDrift) Value() float64 { return d.maxDrift }

func (d *ConservationDrift) Reset() {
	d.initial, d.maxDrift, d.samples = 0, 0, 0
}

// DensityFloor is the smallest density seen across all measurements.
type DensityFloor struct {
	min  float64
	seen bool
}

func NewDensityFloor() *DensityFloor { return &DensityFloor{} }

func (f *DensityFloor) Name() string { return "density_floor" }

func (f *DensityFloor) Observe(m Measurement) {
	if !f.seen || m.DensityMin < f.min {
		f.min = m.DensityMin
		f.seen = true
	}
}

func (f *DensityFloor) Value() float64 { return f.min }

func (f *DensityFloor) Reset() { f.min, f.seen = 0, false }
