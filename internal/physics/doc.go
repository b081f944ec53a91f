// Package physics models neutron wavefronts crossing a nuclear optical
// potential.
//
// The package is split along the chain of dependencies of the model:
//
//   - [Constants]: the physical constants of one run
//   - [Potential] and [Medium]: the radially symmetric nuclear well
//   - [IndexAt]: the local index of refraction derived from the well
//   - [Speed] and [Wavelength]: neutron kinematics
//   - [Wavefront]: one discretised front, implementing [dynamo.System]
//
// # Sign convention
//
// The well depth is positive for an attractive potential. The index is
// n = sqrt((E+U)/E), so n >= 1 inside the well and samples crossing it lag
// behind samples that miss it. Flipping this sign flips the bending
// direction.
//
// # Units
//
// Lengths are in fm, energies in MeV, masses in MeV/c², speeds in units of c
// and times in fm/c.
package physics
