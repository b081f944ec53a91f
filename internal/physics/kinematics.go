package physics

import (
	"math"

	"github.com/san-kum/omwave/internal/dynamo"
)

// Speed returns the non-relativistic speed sqrt(2E/m) in units of c. The
// approximation is only meaningful for E much smaller than m.
func Speed(energy, mass float64) (float64, error) {
	if err := positive("energy", energy); err != nil {
		return 0, err
	}
	if err := positive("mass", mass); err != nil {
		return 0, err
	}
	return math.Sqrt(2 * energy / mass), nil
}

// Wavelength returns the neutron wavelength h (2 m E)^(-1/2) (A+1)/A in fm,
// the (A+1)/A factor converting to the centre-of-mass frame.
func Wavelength(energy float64, c Constants) (float64, error) {
	if err := positive("energy", energy); err != nil {
		return 0, err
	}
	if err := positive("mass", c.NucleonMass); err != nil {
		return 0, err
	}
	if err := positive("mass_number", c.MassNumber); err != nil {
		return 0, err
	}
	if err := positive("planck_constant", c.PlanckConstant); err != nil {
		return 0, err
	}
	return c.PlanckConstant / math.Sqrt(2*c.NucleonMass*energy) * (c.MassNumber + 1) / c.MassNumber, nil
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return dynamo.NewDomainError(name, v, "must be positive and finite")
	}
	return nil
}
