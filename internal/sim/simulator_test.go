package sim_test

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/evolve"
	"github.com/darien0/fish/internal/metrics"
	"github.com/darien0/fish/internal/models"
	"github.com/darien0/fish/internal/physics"
	"github.com/darien0/fish/internal/riemann"
	"github.com/darien0/fish/internal/sim"
	"github.com/darien0/fish/internal/storage"
)

func sodOperator() *evolve.Operator {
	g, err := dynamo.NewGrid([]int{128}, []float64{-0.5}, []float64{0.5})
	Expect(err).NotTo(HaveOccurred())
	solver, err := riemann.New(physics.DefaultGamma, "plm", "hll")
	Expect(err).NotTo(HaveOccurred())
	op, err := evolve.New(physics.NewIdealGas(g, physics.DefaultGamma), solver)
	Expect(err).NotTo(HaveOccurred())
	Expect(op.InitialModel(models.Func(models.NewShockTube()))).To(Succeed())
	return op
}

// scriptedStepper takes fixed steps and fails with err on iteration failAt.
type scriptedStepper struct {
	calls  int
	failAt int
	err    error
	dir    string
	writes int
}

func (s *scriptedStepper) Advance(dt float64, order int) (time.Duration, error) {
	s.calls++
	if s.calls == s.failAt {
		return time.Millisecond, s.err
	}
	return time.Millisecond, nil
}

func (s *scriptedStepper) MinGridSpacing() float64 { return 0.1 }
func (s *scriptedStepper) MaxWavespeed() float64   { return 1.0 }
func (s *scriptedStepper) Zones() int              { return 10 }

func (s *scriptedStepper) Measure() metrics.Measurement {
	return metrics.Measurement{Kinetic: float64(s.calls)}
}

func (s *scriptedStepper) WriteCheckpoint(dir string, status *dynamo.Status, extras map[string]any) (string, error) {
	status.CheckpointNumber++
	status.LastCheckpoint = status.Time
	s.writes++
	return filepath.Join(dir, storage.CheckpointName(status.CheckpointNumber)), nil
}

var _ = Describe("Simulator", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.Config{CFL: 0.3, FinalTime: 0.2, Order: 3}
	})

	It("runs the Sod problem to completion with monotone progress", func() {
		op := sodOperator()
		s := sim.New(op, zerolog.Nop())
		s.AddMetric(metrics.NewConservationDrift("mass_drift", dynamo.Density))

		var lastIteration int
		var lastTime float64
		s.AddObserver(sim.ObserverFunc(func(st dynamo.Status, m metrics.Measurement) {
			Expect(st.Iteration).To(BeNumerically(">", lastIteration))
			Expect(st.Time).To(BeNumerically(">", lastTime))
			Expect(m.Iteration).To(Equal(st.Iteration))
			lastIteration, lastTime = st.Iteration, st.Time
		}))

		res, err := s.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stopped).To(Equal(sim.StopFinalTime))
		Expect(res.Status.Time).To(BeNumerically(">=", 0.2))
		Expect(res.Log.Len()).To(Equal(res.Status.Iteration))
		Expect(res.Status.Message).To(HavePrefix(sprintf05(res.Status.Iteration)))
		Expect(res.Metrics["mass_drift"]).To(BeNumerically("<", 1e-12))
	})

	It("writes checkpoints with the measurement log at the requested interval", func() {
		dir := filepath.Join(GinkgoT().TempDir(), "data", "test")
		cfg.CheckpointInterval = 0.05
		cfg.CheckpointDir = dir
		cfg.FinalCheckpoint = true

		res, err := sim.New(sodOperator(), zerolog.Nop()).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		paths, err := storage.ListCheckpoints(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(Equal(res.Checkpoints))
		Expect(len(paths)).To(BeNumerically(">=", 4))

		prev := -1
		for i, p := range paths {
			cp, err := storage.LoadCheckpoint(p)
			Expect(err).NotTo(HaveOccurred())
			Expect(cp.Status.CheckpointNumber).To(Equal(i + 1))
			var measlog []metrics.Measurement
			Expect(cp.Extra("measlog", &measlog)).To(Succeed())
			Expect(len(measlog)).To(BeNumerically(">", prev))
			prev = len(measlog)
		}
	})

	It("stops cleanly on an unphysical state and keeps earlier output", func() {
		stepper := &scriptedStepper{
			failAt: 4,
			err:    &dynamo.UnphysicalStateError{Field: "density", Count: 1},
		}
		cfg.FinalTime = 10
		cfg.CheckpointInterval = 0.05
		cfg.CheckpointDir = "unused"

		res, err := sim.New(stepper, zerolog.Nop()).Run(context.Background(), cfg)
		Expect(errors.Is(err, dynamo.ErrUnphysical)).To(BeTrue())

		var se *dynamo.SimulationError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Iteration).To(Equal(4))

		Expect(res).NotTo(BeNil())
		Expect(res.Stopped).To(Equal(sim.StopUnphysical))
		Expect(res.Status.Iteration).To(Equal(3))
		Expect(res.Log.Len()).To(Equal(3))
		Expect(res.Checkpoints).To(HaveLen(stepper.writes))
		Expect(stepper.writes).To(BeNumerically(">", 0))
	})

	It("stops after MaxIterations", func() {
		cfg.FinalTime = 10
		cfg.MaxIterations = 5
		res, err := sim.New(&scriptedStepper{}, zerolog.Nop()).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stopped).To(Equal(sim.StopMaxIterations))
		Expect(res.Status.Iteration).To(Equal(5))
		Expect(res.Status.Time).To(BeNumerically("~", 5*0.03, 1e-12))
	})

	It("honours context cancellation between steps", func() {
		ctx, cancel := context.WithCancel(context.Background())
		s := sim.New(&scriptedStepper{}, zerolog.Nop())
		s.AddObserver(sim.ObserverFunc(func(st dynamo.Status, _ metrics.Measurement) {
			if st.Iteration == 2 {
				cancel()
			}
		}))
		cfg.FinalTime = 10
		res, err := s.Run(ctx, cfg)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.Stopped).To(Equal(sim.StopCanceled))
		Expect(res.Status.Iteration).To(Equal(2))
	})

	DescribeTable("rejects invalid configuration",
		func(mutate func(*sim.Config)) {
			mutate(&cfg)
			_, err := sim.New(&scriptedStepper{}, zerolog.Nop()).Run(context.Background(), cfg)
			Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())
		},
		Entry("CFL of one", func(c *sim.Config) { c.CFL = 1 }),
		Entry("zero CFL", func(c *sim.Config) { c.CFL = 0 }),
		Entry("no final time", func(c *sim.Config) { c.FinalTime = 0 }),
		Entry("order five", func(c *sim.Config) { c.Order = 5 }),
		Entry("checkpoints without directory", func(c *sim.Config) { c.CheckpointInterval = 0.1 }),
	)
})
