// Package compute runs independent per-line work across CPU cores.
//
// The hydrodynamics kernels touch each grid line exactly once per axis, so
// a line is the unit of work:
//
//	pool := compute.NewPool(0)
//	err := pool.ForEach(ctx, len(lines), func(i int) error {
//		return solveLine(lines[i])
//	})
//
// A pool with one worker runs everything on the calling goroutine.
package compute
