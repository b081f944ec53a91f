// Package dynamo provides the numerical primitives shared by the wavefront
// simulator.
//
// The package defines the interfaces and types used to advance first-order
// ordinary differential equations (dX/dt = f(X, t)):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE right-hand sides
//   - [Integrator]: fixed-step numerical integrator
//   - [AdaptiveIntegrator]: integrator that also proposes the next step size
//
// It also owns the error taxonomy used across the module: [DomainError] for
// violated physical preconditions and [ConfigurationError] for malformed
// startup configuration.
//
// # Example
//
//	w, _ := physics.NewWavefront(-10, ys, medium, constants)
//	integ := integrators.NewRK4()
//	next := integ.Step(w, w.State(), 0, dt)
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use. Use
// one integrator per goroutine.
package dynamo
