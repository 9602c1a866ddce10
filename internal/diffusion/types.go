package diffusion

import (
	"fmt"
	"math"
	"strings"
)

// MinPoints is the smallest grid with at least one interior point.
const MinPoints = 3

// Field holds one concentration value per grid point.
type Field []float64

func (f Field) Clone() Field {
	c := make(Field, len(f))
	copy(c, f)
	return c
}

func (f Field) IsValid() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Equal reports whether both fields hold bit-identical values.
func (f Field) Equal(other Field) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if math.Float64bits(f[i]) != math.Float64bits(other[i]) {
			return false
		}
	}
	return true
}

// Grid is an immutable sequence of equally spaced coordinates 0, dx, 2dx, ... < Lx.
type Grid struct {
	x      []float64
	dx, lx float64
}

func (g Grid) Len() int          { return len(g.x) }
func (g Grid) At(i int) float64  { return g.x[i] }
func (g Grid) Spacing() float64  { return g.dx }
func (g Grid) Length() float64   { return g.lx }
func (g Grid) Midpoint() float64 { return g.lx / 2 }
func (g Grid) Last() float64     { return g.x[len(g.x)-1] }

// Points returns a copy of the coordinates.
func (g Grid) Points() []float64 { return append([]float64(nil), g.x...) }

func (g Grid) String() string {
	return fmt.Sprintf("grid{Lx=%g dx=%g nx=%d}", g.lx, g.dx, len(g.x))
}

// Boundary selects how the two end points of the field evolve.
type Boundary int

const (
	// Dirichlet holds both end values fixed for the whole run.
	Dirichlet Boundary = iota
	// Periodic treats index 0 and nx-1 as neighbours.
	Periodic
	// Reflective imposes zero flux through a mirrored ghost node.
	Reflective
)

var boundaryNames = map[Boundary]string{
	Dirichlet:  "dirichlet",
	Periodic:   "periodic",
	Reflective: "reflective",
}

func (b Boundary) String() string {
	if name, ok := boundaryNames[b]; ok {
		return name
	}
	return fmt.Sprintf("boundary(%d)", int(b))
}

// ParseBoundary accepts the names printed by Boundary.String. Empty means Dirichlet.
func ParseBoundary(s string) (Boundary, error) {
	if s == "" {
		return Dirichlet, nil
	}
	for b, name := range boundaryNames {
		if strings.EqualFold(s, name) {
			return b, nil
		}
	}
	return Dirichlet, &InvalidParameterError{Name: "boundary", Value: s, Reason: "want dirichlet, periodic or reflective"}
}

// Boundaries lists every variant in declaration order.
func Boundaries() []Boundary {
	return []Boundary{Dirichlet, Periodic, Reflective}
}

// Metric accumulates a scalar over the fields seen during a run.
// Observe is called once for the initial field (step 0) and once after every step.
type Metric interface {
	Name() string
	Observe(step int, t float64, f Field)
	Value() float64
	Reset()
}

// Observer sees the field after every step. The field must not be retained
// or modified; Clone it if needed.
type Observer interface {
	OnStep(step int, t float64, f Field)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, t float64, f Field)

func (fn ObserverFunc) OnStep(step int, t float64, f Field) { fn(step, t, f) }
