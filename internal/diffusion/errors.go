package diffusion

import (
	"errors"
	"fmt"
)

// Domain errors for diffusion operations.
var (
	// ErrInvalidParameter indicates a parameter or grid outside its valid range.
	ErrInvalidParameter = errors.New("diffusion: invalid parameter")

	// ErrUnstable indicates dt exceeds the explicit stability bound 0.5·dx²/D.
	ErrUnstable = errors.New("diffusion: time step exceeds stability bound")

	// ErrDiverged indicates the field picked up NaN or Inf values.
	ErrDiverged = errors.New("diffusion: field diverged (NaN or Inf detected)")
)

// InvalidParameterError names the offending parameter.
type InvalidParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("diffusion: invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// InvalidGridError reports a grid too small for the interior stencil.
type InvalidGridError struct {
	Points int
}

func (e *InvalidGridError) Error() string {
	return fmt.Sprintf("diffusion: grid has %d points, need at least %d", e.Points, MinPoints)
}

func (e *InvalidGridError) Unwrap() error {
	return ErrInvalidParameter
}

// StabilityWarning is returned by CheckStability when dt > 0.5·dx²/D.
// It is a diagnostic: the integrator itself keeps stepping.
type StabilityWarning struct {
	Dt          float64
	Limit       float64
	Coefficient float64
}

func (w *StabilityWarning) Error() string {
	return fmt.Sprintf("diffusion: dt=%g exceeds stability limit %g (D·dt/dx²=%.4f > 0.5)", w.Dt, w.Limit, w.Coefficient)
}

func (w *StabilityWarning) Unwrap() error {
	return ErrUnstable
}

// StepError wraps an error with the step at which it was detected.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
