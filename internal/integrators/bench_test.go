package integrators

import "testing"

func benchmarkStep(b *testing.B, integ Integrator, cells int) {
	u := decayField(b, cells)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, err := integ.Step(decay, u, 1e-4)
		if err != nil {
			b.Fatal(err)
		}
		u = next
	}
}

func BenchmarkEuler(b *testing.B) { benchmarkStep(b, NewEuler(), 1024) }
func BenchmarkRK2(b *testing.B)   { benchmarkStep(b, NewRK2(), 1024) }
func BenchmarkRK3(b *testing.B)   { benchmarkStep(b, NewRK3(), 1024) }
func BenchmarkRK4(b *testing.B)   { benchmarkStep(b, NewRK4(), 1024) }

func BenchmarkRK4_Large(b *testing.B) { benchmarkStep(b, NewRK4(), 1<<16) }
