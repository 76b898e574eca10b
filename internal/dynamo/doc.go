// Package dynamo provides the core primitives for finite-volume gas dynamics.
//
// The package defines the grid geometry, the field buffers the evolution
// operator owns, and the contracts of its collaborators:
//
//   - [Grid]: structured 1/2/3-D grid with a fixed guard-zone width
//   - [Field]: flat cell-major buffer of Nq quantities per cell
//   - [FluidState]: primitive/conserved conversion and wavespeeds
//   - [Solver]: intercell fluxes along a line of cells
//   - [BoundaryCondition]: ghost-zone filling
//   - [SourceTerms]: optional additive right-hand side contributions
//
// # Example
//
//	g, _ := dynamo.NewGrid([]int{128}, []float64{-0.5}, []float64{0.5})
//	u := dynamo.NewField(g, dynamo.NumQ)
//	for _, start := range g.Lines(0) {
//	    // start, start+g.Stride(0), ... walk one line along x
//	}
//
// # Buffers
//
// Ghost cells of a [Field] are written only by a [BoundaryCondition]; interior
// cells are written by flux divergence and source terms. Fields are not safe
// for concurrent writes to the same cells.
package dynamo
