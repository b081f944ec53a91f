package sim

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/omwave/internal/dynamo"
)

// integrateParallel integrates each wavefront on its own goroutine with its
// own integrator. Wavefronts do not interact, so the result matches the
// serial path exactly.
func (e *Engine) integrateParallel(dt float64) ([]dynamo.State, error) {
	next := make([]dynamo.State, len(e.waves))
	var g errgroup.Group
	for i, w := range e.waves {
		g.Go(func() error {
			s, err := w.Integrate(e.integs[i], dt)
			if err != nil {
				return fmt.Errorf("wavefront %d: %w", i, err)
			}
			next[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}
