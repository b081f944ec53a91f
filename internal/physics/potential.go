package physics

import (
	"fmt"
	"math"
)

// Potential evaluates the Woods-Saxon well U0 / (1 + exp((r-R)/a)) at (x, y).
func Potential(x, y float64, c Constants) float64 {
	return woodsSaxon(math.Hypot(x, y), c.WellDepth, c.Radius(), c.SurfaceWidth())
}

func woodsSaxon(r, depth, radius, a float64) float64 {
	return depth / (1 + math.Exp((r-radius)/a))
}

// Shape names a radial form factor.
type Shape string

const (
	ShapeWoodsSaxon Shape = "woods-saxon"
	ShapeSurface    Shape = "surface"
	ShapeGaussian   Shape = "gaussian"
)

// Shapes lists the supported form factors.
func Shapes() []Shape {
	return []Shape{ShapeWoodsSaxon, ShapeSurface, ShapeGaussian}
}

// Medium is a radially symmetric potential sampled in the plane.
type Medium interface {
	PotentialAt(x, y float64) float64
	// Depth is the extreme value of the potential.
	Depth() float64
	Shape() Shape
}

type radialWell struct {
	shape  Shape
	depth  float64
	radius float64
	a      float64
}

// NewMedium builds the medium of the given shape from the run constants.
func NewMedium(shape Shape, c Constants) (Medium, error) {
	if shape == "" {
		shape = ShapeWoodsSaxon
	}
	switch shape {
	case ShapeWoodsSaxon, ShapeSurface, ShapeGaussian:
	default:
		return nil, fmt.Errorf("unknown medium shape: %s", shape)
	}
	return &radialWell{shape: shape, depth: c.WellDepth, radius: c.Radius(), a: c.SurfaceWidth()}, nil
}

func (w *radialWell) Shape() Shape   { return w.shape }
func (w *radialWell) Depth() float64 { return w.depth }

func (w *radialWell) PotentialAt(x, y float64) float64 {
	r := math.Hypot(x, y)
	z := (r - w.radius) / w.a
	switch w.shape {
	case ShapeSurface:
		// 4 f/(1+f)^2 is symmetric under f -> 1/f; use the decaying branch
		// so large |z| cannot overflow into Inf/Inf.
		g := math.Exp(-math.Abs(z))
		return 4 * w.depth * g / ((1 + g) * (1 + g))
	case ShapeGaussian:
		return w.depth * math.Exp(-z*z)
	default:
		return woodsSaxon(r, w.depth, w.radius, w.a)
	}
}
