package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/diffsim/internal/diffusion"
)

// Integral approximates ∫C dx. Periodic fields use the plain sum; the other
// boundaries use the trapezoidal rule, which is the quantity the reflective
// scheme conserves exactly.
func Integral(f diffusion.Field, dx float64, b diffusion.Boundary) float64 {
	if len(f) == 0 {
		return 0
	}
	total := floats.Sum(f)
	if b != diffusion.Periodic {
		total -= (f[0] + f[len(f)-1]) / 2
	}
	return total * dx
}

// Mass reports the integral of the last observed field.
type Mass struct {
	name     string
	dx       float64
	boundary diffusion.Boundary
	current  float64
}

func NewMass(dx float64, b diffusion.Boundary) *Mass {
	return &Mass{name: "mass", dx: dx, boundary: b}
}

func (m *Mass) Name() string { return m.name }

func (m *Mass) Observe(_ int, _ float64, f diffusion.Field) {
	m.current = Integral(f, m.dx, m.boundary)
}

func (m *Mass) Value() float64 { return m.current }

func (m *Mass) Reset() { m.current = 0 }

// MassDrift is the largest relative change of the integral from its
// initial value seen during the run (absolute when the initial mass is zero).
type MassDrift struct {
	name     string
	dx       float64
	boundary diffusion.Boundary
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift(dx float64, b diffusion.Boundary) *MassDrift {
	return &MassDrift{name: "mass_drift", dx: dx, boundary: b}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(_ int, _ float64, f diffusion.Field) {
	mass := Integral(f, m.dx, m.boundary)
	if m.samples == 0 {
		m.initial = mass
	}
	m.samples++

	drift := math.Abs(mass - m.initial)
	if m.initial != 0 {
		drift /= math.Abs(m.initial)
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
