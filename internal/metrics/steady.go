package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/diffsim/internal/diffusion"
)

// SteadyDeviation is the max-norm distance between the last observed field
// and the linear ramp joining the initial end values.
type SteadyDeviation struct {
	name    string
	ramp    []float64
	current float64
}

func NewSteadyDeviation() *SteadyDeviation {
	return &SteadyDeviation{name: "steady_deviation"}
}

func (s *SteadyDeviation) Name() string { return s.name }

func (s *SteadyDeviation) Observe(step int, _ float64, f diffusion.Field) {
	if len(f) < 2 {
		return
	}
	if step == 0 || len(s.ramp) != len(f) {
		s.ramp = floats.Span(make([]float64, len(f)), f[0], f[len(f)-1])
	}
	// floats.Distance with the max norm skips NaN entries.
	if !f.IsValid() {
		s.current = math.NaN()
		return
	}
	s.current = floats.Distance(f, s.ramp, math.Inf(1))
}

func (s *SteadyDeviation) Value() float64 { return s.current }

func (s *SteadyDeviation) Reset() {
	s.ramp = nil
	s.current = 0
}
