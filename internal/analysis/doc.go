// Package analysis provides spectral diagnostics for concentration profiles.
//
//   - [PowerSpectrum]: |X_k|² / n for k in [0, n/2] via a real FFT
//   - [Detrend]: removes the linear ramp between the end values so the
//     periodic extension of a Dirichlet profile has no jump
//   - [DominantMode]: strongest non-constant wavenumber
//   - [OscillationIndex]: share of power in the upper half of wavenumbers
//
// # Instability Detection
//
// An FTCS run above the stability bound grows a checkerboard pattern at the
// Nyquist wavenumber long before it overflows:
//
//	ps := analysis.PowerSpectrum(analysis.Detrend(field))
//	if analysis.OscillationIndex(ps) > 0.5 {
//	    // high-frequency noise dominates
//	}
package analysis
