package physics

import (
	"math"

	"github.com/san-kum/omwave/internal/dynamo"
)

// DefaultDiffuseness is the surface diffuseness of the well, in fm.
const DefaultDiffuseness = 0.5

// Constants fully determines the potential and the kinematics of a run.
type Constants struct {
	WellDepth       float64 // MeV, positive for an attractive well
	NucleonMass     float64 // MeV/c²
	ReferenceEnergy float64 // MeV
	PlanckConstant  float64 // MeV·fm/c
	RadiusConstant  float64 // fm
	MassNumber      float64
	Diffuseness     float64 // fm, zero means DefaultDiffuseness
}

// DefaultConstants describes a 25 MeV neutron on an A=150 nucleus.
func DefaultConstants() Constants {
	return Constants{
		WellDepth:       42.8,
		NucleonMass:     938.5,
		ReferenceEnergy: 25,
		PlanckConstant:  1239.842,
		RadiusConstant:  1.4,
		MassNumber:      150,
		Diffuseness:     DefaultDiffuseness,
	}
}

// Radius returns R = r0 * A^(1/3).
func (c Constants) Radius() float64 {
	return c.RadiusConstant * math.Cbrt(c.MassNumber)
}

// SurfaceWidth returns the diffuseness actually used by the form factors.
func (c Constants) SurfaceWidth() float64 {
	if c.Diffuseness == 0 {
		return DefaultDiffuseness
	}
	return c.Diffuseness
}

// Validate reports the first constant outside the range where the model is
// defined.
func (c Constants) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"nucleon_mass", c.NucleonMass},
		{"reference_energy", c.ReferenceEnergy},
		{"planck_constant", c.PlanckConstant},
		{"radius_constant", c.RadiusConstant},
		{"mass_number", c.MassNumber},
		{"diffuseness", c.SurfaceWidth()},
	}
	for _, chk := range checks {
		if !(chk.value > 0) || math.IsInf(chk.value, 0) {
			return dynamo.NewDomainError(chk.name, chk.value, "must be positive and finite")
		}
	}
	if math.IsNaN(c.WellDepth) || math.IsInf(c.WellDepth, 0) {
		return dynamo.NewDomainError("well_depth", c.WellDepth, "must be finite")
	}
	if c.ReferenceEnergy+math.Min(0, c.WellDepth) <= 0 {
		return dynamo.NewDomainError("well_depth", c.WellDepth, "repulsive well deeper than the reference energy")
	}
	return nil
}
