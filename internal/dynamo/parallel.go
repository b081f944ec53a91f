package dynamo

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor executes fn over [0, n) split into contiguous chunks of at
// least minChunk items. Each index is visited exactly once.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	workers := min(runtime.GOMAXPROCS(0), n/max(1, minChunk))
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		g.Go(func() error {
			fn(start, min(start+chunk, n))
			return nil
		})
	}
	_ = g.Wait()
}
