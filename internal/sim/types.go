package sim

import (
	"time"

	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/metrics"
)

// Stepper is the evolution operator as seen by the loop.
type Stepper interface {
	Advance(dt float64, order int) (time.Duration, error)
	MinGridSpacing() float64
	MaxWavespeed() float64
	Measure() metrics.Measurement
	WriteCheckpoint(dir string, status *dynamo.Status, extras map[string]any) (string, error)
	Zones() int
}

type Observer interface {
	OnStep(status dynamo.Status, m metrics.Measurement)
}

type ObserverFunc func(status dynamo.Status, m metrics.Measurement)

func (f ObserverFunc) OnStep(status dynamo.Status, m metrics.Measurement) { f(status, m) }

type Config struct {
	CFL       float64
	FinalTime float64
	Order     int
	// CheckpointInterval is the simulated time between checkpoints. Zero
	// disables periodic checkpoints.
	CheckpointInterval float64
	CheckpointDir      string
	FinalCheckpoint    bool
	// MaxIterations stops the loop early when positive.
	MaxIterations int
}

// Stop reasons.
const (
	StopFinalTime     = "final_time"
	StopMaxIterations = "max_iterations"
	StopUnphysical    = "unphysical"
	StopCanceled      = "canceled"
	StopError         = "error"
)

type Result struct {
	Status      dynamo.Status
	Log         *metrics.Log
	Checkpoints []string
	Metrics     map[string]float64
	Wall        time.Duration
	Stopped     string
}
