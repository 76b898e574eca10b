package compute

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// serialThreshold is the task count below which goroutines cost more than
// they save.
const serialThreshold = 16

type Pool struct {
	workers int
}

// NewPool returns a pool with the given number of workers. Zero or a
// negative count selects runtime.NumCPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

func (p *Pool) Name() string { return "cpu" }
func (p *Pool) Workers() int { return p.workers }

// ForEach calls fn for every index in [0, n). Indices are split into one
// contiguous chunk per worker. The first error cancels the remaining
// chunks and is returned.
func (p *Pool) ForEach(ctx context.Context, n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if p.workers == 1 || n < serialThreshold {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return ctx.Err()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	chunkSize := (n + p.workers - 1) / p.workers

	for start := 0; start < n; start += chunkSize {
		start := start
		end := start + chunkSize
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%64 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
