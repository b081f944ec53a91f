package physics

import (
	"math"

	"github.com/san-kum/omwave/internal/dynamo"
)

// IndexAt returns the index of refraction sqrt((E+U)/E) of the Woods-Saxon
// well at (x, y) for a neutron of the given energy.
func IndexAt(x, y, energy float64, c Constants) (float64, error) {
	if !(energy > 0) || math.IsInf(energy, 0) {
		return 0, dynamo.NewDomainError("energy", energy, "must be positive and finite")
	}
	return indexFor(Potential(x, y, c), energy)
}

// MediumIndexAt is IndexAt for an arbitrary medium.
func MediumIndexAt(m Medium, x, y, energy float64) (float64, error) {
	if !(energy > 0) || math.IsInf(energy, 0) {
		return 0, dynamo.NewDomainError("energy", energy, "must be positive and finite")
	}
	return indexFor(m.PotentialAt(x, y), energy)
}

func indexFor(u, energy float64) (float64, error) {
	ratio := (energy + u) / energy
	if ratio < 0 {
		return 0, dynamo.NewDomainError("potential", u, "total energy below zero")
	}
	return math.Sqrt(ratio), nil
}
