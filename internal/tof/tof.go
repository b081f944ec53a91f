// Package tof converts between neutron time of flight and kinetic energy
// using relativistic kinematics.
package tof

import (
	"errors"
	"math"

	"github.com/san-kum/omwave/internal/dynamo"
)

const (
	DefaultDistance    = 2709.4   // flight path, cm
	DefaultNeutronMass = 939.565  // MeV/c²
	SpeedOfLight       = 2.9979e8 // m/s
	nsPerCmPerMps      = 1e7      // converts cm / (m/s) to ns
)

var ErrFasterThanLight = errors.New("tof: velocity cannot exceed speed of light")

// Beamline holds the flight geometry. The zero value is not usable; start
// from Default.
type Beamline struct {
	Distance float64 // cm
	Mass     float64 // MeV/c²
}

func Default() Beamline {
	return Beamline{Distance: DefaultDistance, Mass: DefaultNeutronMass}
}

func (b Beamline) validate() error {
	if !(b.Distance > 0) || math.IsInf(b.Distance, 0) {
		return dynamo.NewDomainError("distance", b.Distance, "flight distance must be positive")
	}
	if !(b.Mass > 0) || math.IsInf(b.Mass, 0) {
		return dynamo.NewDomainError("mass", b.Mass, "mass must be positive")
	}
	return nil
}

// EnergyFromTOF returns the kinetic energy in MeV of a particle crossing the
// flight path in tofNs nanoseconds.
func (b Beamline) EnergyFromTOF(tofNs float64) (float64, error) {
	if err := b.validate(); err != nil {
		return 0, err
	}
	if !(tofNs > 0) || math.IsInf(tofNs, 0) {
		return 0, dynamo.NewDomainError("tof", tofNs, "time of flight must be positive (ns)")
	}
	v := nsPerCmPerMps * b.Distance / tofNs
	if v >= SpeedOfLight {
		return 0, ErrFasterThanLight
	}
	beta := v / SpeedOfLight
	// gamma-1 written as beta²/(s(1+s)) with s = 1/gamma keeps precision
	// at low speed.
	s := math.Sqrt(1 - beta*beta)
	if s == 0 {
		return 0, ErrFasterThanLight
	}
	energy := beta * beta / (s * (1 + s)) * b.Mass
	if !(energy > 0) || math.IsInf(energy, 0) {
		return 0, dynamo.NewDomainError("tof", tofNs, "time of flight outside representable energy range")
	}
	return energy, nil
}

// TOFFromEnergy returns the flight time in ns for a kinetic energy in MeV.
func (b Beamline) TOFFromEnergy(energyMeV float64) (float64, error) {
	if err := b.validate(); err != nil {
		return 0, err
	}
	if !(energyMeV > 0) || math.IsInf(energyMeV, 0) {
		return 0, dynamo.NewDomainError("energy", energyMeV, "energy must be positive (MeV)")
	}
	// v = c·sqrt(E(E+2m))/(E+m) avoids the 1-1/gamma² cancellation.
	v := SpeedOfLight * math.Sqrt(energyMeV*(energyMeV+2*b.Mass)) / (energyMeV + b.Mass)
	if !(v > 0) {
		return 0, dynamo.NewDomainError("energy", energyMeV, "energy too small to resolve a velocity")
	}
	tof := nsPerCmPerMps * b.Distance / v
	if math.IsInf(tof, 0) || math.IsNaN(tof) {
		return 0, dynamo.NewDomainError("energy", energyMeV, "time of flight not representable")
	}
	return tof, nil
}

func EnergyFromTOF(tofNs float64) (float64, error)     { return Default().EnergyFromTOF(tofNs) }
func TOFFromEnergy(energyMeV float64) (float64, error) { return Default().TOFFromEnergy(energyMeV) }
