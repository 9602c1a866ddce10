package metrics

import "github.com/san-kum/diffsim/internal/diffusion"

// MonotonicityTolerance absorbs rounding noise in flat regions.
const MonotonicityTolerance = 1e-9

// Defaults returns the metrics attached to every CLI run.
func Defaults(dx float64, b diffusion.Boundary) []diffusion.Metric {
	ms := []diffusion.Metric{
		NewMass(dx, b),
		NewMassDrift(dx, b),
		NewBoundaryDrift(),
		NewOvershoot(),
		NewMonotonicity(MonotonicityTolerance),
	}
	if b == diffusion.Dirichlet {
		ms = append(ms, NewSteadyDeviation())
	}
	return ms
}
