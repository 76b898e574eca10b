package evolve_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/darien0/fish/internal/boundary"
	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/evolve"
	"github.com/darien0/fish/internal/metrics"
	"github.com/darien0/fish/internal/models"
	"github.com/darien0/fish/internal/physics"
	"github.com/darien0/fish/internal/riemann"
	"github.com/darien0/fish/internal/safety"
	"github.com/darien0/fish/internal/sources"
	"github.com/darien0/fish/internal/storage"
)

func newOperator(interior []int, recon string, opts ...evolve.Option) *evolve.Operator {
	g, err := dynamo.NewGrid(interior, []float64{-0.5, -0.5, -0.5}, []float64{0.5, 0.5, 0.5})
	Expect(err).NotTo(HaveOccurred())
	solver, err := riemann.New(physics.DefaultGamma, recon, "hll")
	Expect(err).NotTo(HaveOccurred())
	op, err := evolve.New(physics.NewIdealGas(g, physics.DefaultGamma), solver, opts...)
	Expect(err).NotTo(HaveOccurred())
	return op
}

func expectAllZero(f *dynamo.Field) {
	for i, v := range f.Data() {
		Expect(v).To(BeZero(), "value %d", i)
	}
}

// failingSolver delegates to a real solver until its budget of successful
// line calls is spent.
type failingSolver struct {
	inner  dynamo.Solver
	budget int
}

var errSolver = errors.New("solver exhausted")

func (s *failingSolver) IntercellFlux(line [][]float64, axis int) ([][]float64, error) {
	if s.budget <= 0 {
		return nil, errSolver
	}
	s.budget--
	return s.inner.IntercellFlux(line, axis)
}

var _ = Describe("Operator", func() {
	Describe("construction", func() {
		It("requires a fluid state and a solver", func() {
			_, err := evolve.New(nil, &riemann.Solver{})
			Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())

			g, _ := dynamo.NewGrid([]int{8}, []float64{0}, []float64{1})
			_, err = evolve.New(physics.NewIdealGas(g, 1.4), nil)
			Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())
		})
	})

	Describe("ComputeRHS", func() {
		DescribeTable("is exactly zero for a uniform state with outflow boundaries",
			func(interior []int, recon string) {
				op := newOperator(interior, recon, evolve.WithWorkers(2))
				uniform := models.NewUniform()
				uniform.State = [dynamo.NumQ]float64{1.3, 0.7, 0.4, -0.2, 0.1}
				Expect(op.InitialModel(models.Func(uniform))).To(Succeed())

				l, err := op.ComputeRHS(op.Fluid().Conserved())
				Expect(err).NotTo(HaveOccurred())
				expectAllZero(l)
			},
			Entry("1D pcm", []int{32}, "pcm"),
			Entry("1D plm", []int{32}, "plm"),
			Entry("2D plm", []int{12, 10}, "plm"),
			Entry("3D pcm", []int{6, 5, 4}, "pcm"),
		)

		It("leaves ghost rows of the result at zero", func() {
			op := newOperator([]int{16}, "plm")
			Expect(op.InitialModel(models.Func(models.NewShockTube()))).To(Succeed())
			l, err := op.ComputeRHS(op.Fluid().Conserved())
			Expect(err).NotTo(HaveOccurred())

			g := op.Grid()
			nonzero := 0
			for c := 0; c < g.Cells(); c++ {
				for _, v := range l.Cell(c) {
					if !g.IsInterior(c) {
						Expect(v).To(BeZero())
					} else if v != 0 {
						nonzero++
					}
				}
			}
			Expect(nonzero).To(BeNumerically(">", 0))
		})

		It("refills guard zones of its input", func() {
			op := newOperator([]int{8}, "pcm")
			Expect(op.InitialModel(models.Func(models.NewShockTube()))).To(Succeed())
			u := op.Fluid().Conserved()
			copy(u.Cell(0), []float64{9, 9, 9, 9, 9})

			_, err := op.ComputeRHS(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Cell(0)).To(Equal(u.Cell(op.Grid().NG())))
		})

		It("adds source terms on the interior only", func() {
			op := newOperator([]int{16}, "pcm", evolve.WithSources(sources.NewCentralGravity(0.1)))
			Expect(op.InitialModel(models.Func(models.NewUniform()))).To(Succeed())

			l, err := op.ComputeRHS(op.Fluid().Conserved())
			Expect(err).NotTo(HaveOccurred())

			g := op.Grid()
			left := l.Cell(g.NG())
			right := l.Cell(g.Cells() - g.NG() - 1)
			Expect(left[dynamo.MomentumX]).To(BeNumerically(">", 0))
			Expect(right[dynamo.MomentumX]).To(BeNumerically("<", 0))
			Expect(l.Cell(0)[dynamo.MomentumX]).To(BeZero())
		})

		It("raises on negative density in strict mode", func() {
			op := newOperator([]int{16}, "pcm")
			Expect(op.InitialModel(models.Func(models.NewUniform()))).To(Succeed())
			u := op.Fluid().Conserved()
			u.Cell(op.Grid().NG() + 5)[dynamo.Density] = -1

			_, err := op.ComputeRHS(u)
			var ue *dynamo.UnphysicalStateError
			Expect(errors.As(err, &ue)).To(BeTrue())
			Expect(ue.Field).To(Equal("density"))
		})

		It("rewrites the input from repaired primitives in repair mode", func() {
			op := newOperator([]int{16}, "pcm", evolve.WithValidator(safety.New(safety.Repair, zerolog.Nop())))
			Expect(op.InitialModel(models.Func(models.NewUniform()))).To(Succeed())
			u := op.Fluid().Conserved()
			bad := op.Grid().NG() + 5
			u.Cell(bad)[dynamo.Density] = -1

			_, err := op.ComputeRHS(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Cell(bad)[dynamo.Density]).To(Equal(safety.DefaultFloor))
		})
	})

	Describe("Advance", func() {
		It("leaves the state unchanged when the right-hand side vanishes", func() {
			op := newOperator([]int{24}, "plm")
			Expect(op.InitialModel(models.Func(models.NewUniform()))).To(Succeed())
			before := op.Fluid().Conserved()

			for order := 1; order <= 4; order++ {
				_, err := op.Advance(0.01, order)
				Expect(err).NotTo(HaveOccurred())
			}
			after := op.Fluid().Conserved()
			for i, v := range after.Data() {
				Expect(v).To(BeNumerically("~", before.Data()[i], 1e-14))
			}
		})

		It("rejects unsupported orders and bad time steps", func() {
			op := newOperator([]int{8}, "pcm")
			Expect(op.InitialModel(models.Func(models.NewUniform()))).To(Succeed())
			for _, order := range []int{0, 5} {
				_, err := op.Advance(0.01, order)
				Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())
			}
			for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1)} {
				_, err := op.Advance(dt, 3)
				Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())
			}
		})

		DescribeTable("keeps the committed state when a later stage fails",
			func(order, budget int) {
				g, _ := dynamo.NewGrid([]int{16}, []float64{-0.5}, []float64{0.5})
				inner, _ := riemann.New(1.4, "plm", "hll")
				solver := &failingSolver{inner: inner, budget: budget}
				op, err := evolve.New(physics.NewIdealGas(g, 1.4), solver, evolve.WithWorkers(1))
				Expect(err).NotTo(HaveOccurred())
				Expect(op.InitialModel(models.Func(models.NewShockTube()))).To(Succeed())
				before := op.Fluid().Primitive().Clone()

				_, err = op.Advance(0.001, order)
				Expect(errors.Is(err, errSolver)).To(BeTrue())
				Expect(op.Fluid().Primitive().Data()).To(Equal(before.Data()))
			},
			Entry("rk2 second stage", 2, 1),
			Entry("rk3 third stage", 3, 2),
			Entry("rk4 fourth stage", 4, 3),
		)

		It("keeps the committed state when a stage becomes unphysical", func() {
			op := newOperator([]int{32}, "pcm")
			// A near-vacuum next to a strong blast drives the density negative
			// within one oversized step.
			tube := models.NewShockTube()
			tube.RhoRight, tube.PreRight = 1e-6, 1e-6
			tube.PreLeft = 1000
			Expect(op.InitialModel(models.Func(tube))).To(Succeed())
			before := op.Fluid().Primitive().Clone()

			_, err := op.Advance(0.5, 3)
			Expect(errors.Is(err, dynamo.ErrUnphysical)).To(BeTrue())
			Expect(op.Fluid().Primitive().Data()).To(Equal(before.Data()))
		})

		It("advances source terms once per step", func() {
			drv := sources.NewDriving(1, 1, 0.1, 0.5, 7)
			twin := sources.NewDriving(1, 1, 0.1, 0.5, 7)
			op := newOperator([]int{16}, "pcm", evolve.WithSources(drv))
			Expect(op.InitialModel(models.Func(models.NewUniform()))).To(Succeed())

			_, err := op.Advance(0.01, 2)
			Expect(err).NotTo(HaveOccurred())
			twin.Advance(0.01)

			p := op.Fluid().Primitive().Interior()
			a, _ := drv.Evaluate(p)
			b, _ := twin.Evaluate(p)
			Expect(a.Data()).To(Equal(b.Data()))
		})

		It("converges on an advected smooth wave", func() {
			errorAt := func(n int) float64 {
				wave := models.NewSmoothWave()
				op := newOperator([]int{n}, "plm", evolve.WithBoundary(boundary.NewPeriodic()))
				Expect(op.InitialModel(models.Func(wave))).To(Succeed())

				tFinal := 0.1
				steps := int(math.Ceil(tFinal / (0.3 * op.MinGridSpacing() / op.MaxWavespeed())))
				dt := tFinal / float64(steps)
				for i := 0; i < steps; i++ {
					_, err := op.Advance(dt, 3)
					Expect(err).NotTo(HaveOccurred())
				}

				exact := wave.At(tFinal)
				g := op.Grid()
				p := op.Fluid().Primitive()
				l1 := 0.0
				g.ForEachInterior(func(c, _ int) {
					x := g.Center(c)
					l1 += math.Abs(p.Cell(c)[dynamo.Density] - exact.Primitive(x[0], 0, 0)[dynamo.Density])
				})
				return l1 / float64(g.InteriorCells())
			}

			coarse, fine := errorAt(32), errorAt(64)
			Expect(fine).To(BeNumerically("<", 0.01))
			Expect(coarse / fine).To(BeNumerically(">", 1.5))
		})
	})

	Describe("Sod shock tube", func() {
		It("runs to t=0.2 with RK3 at CFL 0.3 and conserves mass", func() {
			op := newOperator([]int{128}, "plm")
			Expect(op.InitialModel(models.Func(models.NewShockTube()))).To(Succeed())
			mass0 := op.Measure().ConservedAvg[dynamo.Density]

			t, iterations := 0.0, 0
			for t < 0.2 {
				dt := 0.3 * op.MinGridSpacing() / op.MaxWavespeed()
				_, err := op.Advance(dt, 3)
				Expect(err).NotTo(HaveOccurred())
				Expect(dt).To(BeNumerically(">", 0))
				t += dt
				iterations++
			}

			m := op.Measure()
			Expect(iterations).To(BeNumerically(">", 10))
			Expect(m.DensityMin).To(BeNumerically(">", 0.1))
			Expect(m.DensityMax).To(BeNumerically("<=", 1.0+1e-6))
			Expect(m.ConservedAvg[dynamo.Density]).To(BeNumerically("~", mass0, 1e-12))
			Expect(m.Kinetic).To(BeNumerically(">", 0))
		})
	})

	Describe("diagnostics", func() {
		It("measures interior cells", func() {
			op := newOperator([]int{10}, "pcm")
			uniform := models.NewUniform()
			uniform.State = [dynamo.NumQ]float64{2, 1, 0.5, 0, 0}
			Expect(op.InitialModel(models.Func(uniform))).To(Succeed())

			m := op.Measure()
			Expect(m.Kinetic).To(BeNumerically("~", 0.5, 1e-14))
			Expect(m.DensityMin).To(Equal(2.0))
			Expect(m.DensityMax).To(Equal(2.0))
			Expect(m.ConservedAvg[dynamo.MomentumX]).To(BeNumerically("~", 1.0, 1e-14))
			Expect(m.PrimitiveAvg[dynamo.VelocityX]).To(BeNumerically("~", 0.5, 1e-14))
			Expect(op.MaxWavespeed()).To(BeNumerically("~", 0.5+math.Sqrt(0.7), 1e-12))
			Expect(op.MinGridSpacing()).To(BeNumerically("~", 0.1, 1e-15))
			Expect(op.Zones()).To(Equal(10))
		})
	})

	Describe("WriteCheckpoint", func() {
		It("numbers checkpoints and creates the directory", func() {
			op := newOperator([]int{8}, "pcm")
			Expect(op.InitialModel(models.Func(models.NewShockTube()))).To(Succeed())
			dir := filepath.Join(GinkgoT().TempDir(), "data", "test")
			status := &dynamo.Status{Iteration: 4, Time: 1.5}

			log := metrics.NewLog()
			Expect(log.Append(metrics.Measurement{Iteration: 1})).To(Succeed())

			path, err := op.WriteCheckpoint(dir, status, map[string]any{"measlog": log.Entries()})
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(path)).To(Equal("chkpt.0001.json"))
			Expect(status.CheckpointNumber).To(Equal(1))
			Expect(status.LastCheckpoint).To(Equal(1.5))

			cp, err := storage.LoadCheckpoint(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cp.Status).To(Equal(*status))
			Expect(cp.Primitive.Data).To(Equal(op.Fluid().Primitive().Data()))

			path, err = op.WriteCheckpoint(dir, status, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(path)).To(Equal("chkpt.0002.json"))
		})

		It("reports an IOError and keeps the status when the path is unusable", func() {
			op := newOperator([]int{8}, "pcm")
			blocker := filepath.Join(GinkgoT().TempDir(), "file")
			Expect(os.WriteFile(blocker, []byte("x"), 0644)).To(Succeed())
			status := &dynamo.Status{Time: 1}

			_, err := op.WriteCheckpoint(filepath.Join(blocker, "dir"), status, nil)
			var ioErr *dynamo.IOError
			Expect(errors.As(err, &ioErr)).To(BeTrue())
			Expect(status.CheckpointNumber).To(BeZero())
		})
	})
})
