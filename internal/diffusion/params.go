package diffusion

import "math"

const (
	DefaultDiffusivity = 100.0
	DefaultLength      = 300.0
	DefaultSpacing     = 0.5
	DefaultLeft        = 500.0
	DefaultRight       = 0.0
	DefaultSteps       = 5000
)

// Params configures a single run. Dt == 0 selects StableDt(D, Dx).
type Params struct {
	D      float64
	Lx     float64
	Dx     float64
	CLeft  float64
	CRight float64
	Nt     int
	Dt     float64
}

// DefaultParams returns the step-function setup of the reference notebook:
// D=100, Lx=300, dx=0.5, 500 on the left, 0 on the right, 5000 steps.
func DefaultParams() Params {
	return Params{
		D:      DefaultDiffusivity,
		Lx:     DefaultLength,
		Dx:     DefaultSpacing,
		CLeft:  DefaultLeft,
		CRight: DefaultRight,
		Nt:     DefaultSteps,
	}
}

// TimeStep returns Dt, or the stability limit when Dt is unset.
func (p Params) TimeStep() float64 {
	if p.Dt > 0 {
		return p.Dt
	}
	return StableDt(p.D, p.Dx)
}

// Coefficient returns D·dt/dx² for the effective time step.
func (p Params) Coefficient() float64 {
	return Coefficient(p.D, p.TimeStep(), p.Dx)
}

// Duration is the simulated time nt·dt.
func (p Params) Duration() float64 {
	return float64(p.Nt) * p.TimeStep()
}

func (p Params) Validate() error {
	if err := positive("D", p.D); err != nil {
		return err
	}
	if err := positive("Lx", p.Lx); err != nil {
		return err
	}
	if err := positive("dx", p.Dx); err != nil {
		return err
	}
	if err := finite("C_left", p.CLeft); err != nil {
		return err
	}
	if err := finite("C_right", p.CRight); err != nil {
		return err
	}
	if p.Nt < 0 {
		return &InvalidParameterError{Name: "nt", Value: p.Nt, Reason: "must be non-negative"}
	}
	if p.Dt < 0 || math.IsNaN(p.Dt) || math.IsInf(p.Dt, 0) {
		return &InvalidParameterError{Name: "dt", Value: p.Dt, Reason: "must be positive, or zero for the stable default"}
	}
	return nil
}

// StableDt is the largest time step for which FTCS stays stable: 0.5·dx²/D.
func StableDt(d, dx float64) float64 {
	return 0.5 * dx * dx / d
}

// Coefficient is the dimensionless diffusion number r = D·dt/dx².
func Coefficient(d, dt, dx float64) float64 {
	return d * dt / (dx * dx)
}

// CheckStability returns a *StabilityWarning when dt > 0.5·dx²/D, nil otherwise.
func CheckStability(d, dx, dt float64) error {
	limit := StableDt(d, dx)
	if dt > limit {
		return &StabilityWarning{Dt: dt, Limit: limit, Coefficient: Coefficient(d, dt, dx)}
	}
	return nil
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return &InvalidParameterError{Name: name, Value: v, Reason: "must be positive and finite"}
	}
	return nil
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &InvalidParameterError{Name: name, Value: v, Reason: "must be finite"}
	}
	return nil
}
