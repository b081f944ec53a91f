// Package optim fits tunable medium parameters to a target observable by
// exhaustive grid search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/omwave/internal/config"
	"github.com/san-kum/omwave/internal/experiment"
	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/sim"
)

// Objective scores a finished run; lower is better.
type Objective func(*sim.Result) float64

// PhaseTarget scores a run by its distance from a target phase difference.
func PhaseTarget(target float64) Objective {
	return func(r *sim.Result) float64 {
		return math.Abs(r.Clock.PhaseDifference - target)
	}
}

// FromConfig returns an experiment builder that applies the grid values to a
// copy of base.
func FromConfig(base *config.Config) func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(cfg, "", nil), nil
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d parameters with %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point and returns the parameters with the lowest
// objective. Points whose setup fails are skipped; if every point fails the
// first error is returned.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64
	var firstErr error

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		val, err := evaluate(ctx, buildExperiment, objective, params)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if firstErr == nil {
				firstErr = err
			}
			return nil
		}
		if val < best {
			best = val
			bestParams = params
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		if firstErr == nil {
			firstErr = errors.New("grid search: no point evaluated")
		}
		return nil, 0, firstErr
	}
	return bestParams, best, nil
}

func evaluate(
	ctx context.Context,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	objective Objective,
	params map[string]float64,
) (float64, error) {
	exp, err := buildExperiment(params)
	if err != nil {
		return 0, err
	}
	if err := exp.Setup(); err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	return objective(result), nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64) error,
) error {
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		if err := ctx.Err(); err != nil {
			return err
		}
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

// ParseRange parses "name=min:max:n" into a parameter name and n evenly
// spaced values, or "name=v" into a single value.
func ParseRange(expr string) (string, []float64, error) {
	name, rng, ok := strings.Cut(expr, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("range %q: want name=min:max:n", expr)
	}
	parts := strings.Split(rng, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", expr, err)
		}
		return name, []float64{v}, nil
	case 3:
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", expr, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", expr, err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", expr, err)
		}
		values, err := physics.Samples(lo, hi, n)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", expr, err)
		}
		return name, values, nil
	default:
		return "", nil, fmt.Errorf("range %q: want name=min:max:n", expr)
	}
}

// SortedParams formats a parameter set in name order.
func SortedParams(params map[string]float64) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, params[name])
	}
	return strings.Join(parts, " ")
}
