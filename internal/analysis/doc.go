// Package analysis provides trajectory diagnostics.
//
//   - [PowerSpectrum] and [DominantFrequency]: frequency content of a
//     recorded component
//   - [MaxLyapunov]: largest Lyapunov exponent via trajectory separation
//   - [PhaseScatter]: ASCII phase space plot of two components
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.MaxLyapunov(sys, st, dt, duration, 1e-8)
//	if lambda > 0 {
//	    // chaotic
//	}
package analysis
