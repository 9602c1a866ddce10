package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/diffsim/internal/diffusion"
)

// Monotonicity counts the steps at which the field stops being monotone in
// the direction fixed by its initial end values. A stable FTCS run of a
// single step function never increments it.
type Monotonicity struct {
	name       string
	tolerance  float64
	direction  float64
	violations int
}

func NewMonotonicity(tolerance float64) *Monotonicity {
	return &Monotonicity{name: "monotonicity_violations", tolerance: tolerance}
}

func (m *Monotonicity) Name() string { return m.name }

func (m *Monotonicity) Observe(step int, _ float64, f diffusion.Field) {
	if len(f) < 2 {
		return
	}
	if step == 0 {
		m.direction = 0
		switch {
		case f[len(f)-1] < f[0]:
			m.direction = -1
		case f[len(f)-1] > f[0]:
			m.direction = 1
		}
	}
	if m.direction == 0 {
		return
	}
	for i := 1; i < len(f); i++ {
		if m.direction*(f[i]-f[i-1]) < -m.tolerance {
			m.violations++
			return
		}
	}
}

func (m *Monotonicity) Value() float64 { return float64(m.violations) }

func (m *Monotonicity) Reset() {
	m.direction = 0
	m.violations = 0
}

// Overshoot measures how far the field leaves the [min, max] range of the
// initial field. Diffusion obeys a maximum principle, so any overshoot is
// numerical.
type Overshoot struct {
	name    string
	lo, hi  float64
	worst   float64
	samples int
}

func NewOvershoot() *Overshoot {
	return &Overshoot{name: "overshoot"}
}

func (o *Overshoot) Name() string { return o.name }

func (o *Overshoot) Observe(_ int, _ float64, f diffusion.Field) {
	if len(f) == 0 {
		return
	}
	lo, hi := floats.Min(f), floats.Max(f)
	if o.samples == 0 {
		o.lo, o.hi = lo, hi
	}
	o.samples++
	o.worst = math.Max(o.worst, math.Max(hi-o.hi, o.lo-lo))
}

func (o *Overshoot) Value() float64 { return o.worst }

func (o *Overshoot) Reset() {
	o.lo, o.hi = 0, 0
	o.worst = 0
	o.samples = 0
}
