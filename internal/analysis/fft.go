package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum returns |X_k|²/n for k = 0..n/2.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	coeffs := fft.FFTReal(data)
	ps := make([]float64, n/2+1)
	for k := range ps {
		a := cmplx.Abs(coeffs[k])
		ps[k] = a * a / float64(n)
	}
	return ps
}

// Detrend subtracts the straight line through the first and last samples.
func Detrend(data []float64) []float64 {
	if len(data) < 2 {
		return append([]float64(nil), data...)
	}
	ramp := floats.Span(make([]float64, len(data)), data[0], data[len(data)-1])
	out := make([]float64, len(data))
	floats.SubTo(out, data, ramp)
	return out
}

// DominantMode returns the wavenumber k >= 1 with the most power, or 0 when
// the spectrum has no non-constant component.
func DominantMode(ps []float64) int {
	best, bestPower := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPower {
			best, bestPower = k, ps[k]
		}
	}
	return best
}

// OscillationIndex is the fraction of non-constant power above half the
// Nyquist wavenumber. Smooth profiles sit near 0, checkerboards near 1.
func OscillationIndex(ps []float64) float64 {
	if len(ps) < 3 {
		return 0
	}
	total := floats.Sum(ps[1:])
	if total == 0 {
		return 0
	}
	cut := (len(ps) - 1) / 2
	return floats.Sum(ps[cut+1:]) / total
}
