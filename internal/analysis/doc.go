// Package analysis characterises the shape of propagated wavefronts.
//
//   - [Aberration]: displacement of each sample relative to the edge sample
//   - [Spectrum]: magnitude spectrum of the aberration profile
//   - [FitCurvature]: least-squares parabola and the implied focal length
//   - [PhaseRate]: slope of the phase-difference history
//   - [StepConvergence]: one dt step against two dt/2 steps
//
// A front crossing an attractive well lags in the middle, so its curvature
// is positive and the focal length finite:
//
//	fit, err := analysis.FitCurvature(p.Ys, p.Xs)
//	if err == nil && fit.Curvature > 0 {
//	    // converging
//	}
package analysis
