// Package physics provides the ideal-gas fluid state used by the evolution operator.
//
// [IdealGas] implements [dynamo.FluidState]: it owns the primitive array
// (density, pressure, velocity) and converts to and from conserved variables
// (density, total energy, momentum) with a gamma-law equation of state.
//
// The per-cell helpers [PrimToCons], [ConsToPrim] and [Flux] are exported for
// flux solvers that work on one line of states at a time.
//
//	gas := physics.NewIdealGas(g, 1.4)
//	u := gas.Conserved()
//	// ... evolve u ...
//	_ = gas.FromConserved(u)
package physics
