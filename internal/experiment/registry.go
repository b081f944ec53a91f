package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/omwave/internal/dynamo"
	"github.com/san-kum/omwave/internal/integrators"
	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/sim"
)

type Registry struct {
	integrators map[string]sim.IntegratorFactory
	media       map[string]physics.Shape
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]sim.IntegratorFactory),
		media:       make(map[string]physics.Shape),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	for _, s := range physics.Shapes() {
		r.media[string(s)] = s
	}
	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, err := r.IntegratorFactory(name)
	if err != nil {
		return nil, err
	}
	return fn(), nil
}

func (r *Registry) IntegratorFactory(name string) (sim.IntegratorFactory, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

// GetMedium builds the named medium. An empty name selects woods-saxon, the
// same default config validation applies.
func (r *Registry) GetMedium(name string, c physics.Constants) (physics.Medium, error) {
	if name == "" {
		name = string(physics.ShapeWoodsSaxon)
	}
	shape, ok := r.media[name]
	if !ok {
		return nil, fmt.Errorf("unknown medium: %s", name)
	}
	return physics.NewMedium(shape, c)
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListMedia() []string       { return sortedKeys(r.media) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
