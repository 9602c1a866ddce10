package diffusion

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NewGrid builds x = 0, dx, 2dx, ... < lx with nx = ceil(lx/dx) points.
// Coordinates are computed as i·dx so they do not accumulate rounding error.
func NewGrid(lx, dx float64) (Grid, error) {
	if err := positive("Lx", lx); err != nil {
		return Grid{}, err
	}
	if err := positive("dx", dx); err != nil {
		return Grid{}, err
	}

	nx := int(math.Ceil(lx / dx))
	if nx < MinPoints {
		return Grid{}, &InvalidGridError{Points: nx}
	}

	x := make([]float64, nx)
	for i := range x {
		x[i] = float64(i) * dx
	}
	return Grid{x: x, dx: dx, lx: lx}, nil
}

// Initialize builds the grid and a step-function field: cLeft where
// x <= lx/2 and cRight where x > lx/2. When lx/2 falls exactly on a grid
// point that point takes cLeft.
func Initialize(lx, dx, cLeft, cRight float64) (Grid, Field, error) {
	if err := finite("C_left", cLeft); err != nil {
		return Grid{}, nil, err
	}
	if err := finite("C_right", cRight); err != nil {
		return Grid{}, nil, err
	}

	g, err := NewGrid(lx, dx)
	if err != nil {
		return Grid{}, nil, err
	}

	mid := g.Midpoint()
	c := make(Field, g.Len())
	for i, x := range g.x {
		if x <= mid {
			c[i] = cLeft
		} else {
			c[i] = cRight
		}
	}
	return g, c, nil
}

// SteadyState is the linear ramp between the two end values of f over g,
// the t → ∞ solution under Dirichlet boundaries.
func SteadyState(g Grid, f Field) (Field, error) {
	if len(f) != g.Len() {
		return nil, &InvalidParameterError{Name: "field", Value: len(f), Reason: "length does not match grid"}
	}
	if len(f) < MinPoints {
		return nil, &InvalidGridError{Points: len(f)}
	}

	ramp := make(Field, len(f))
	floats.Span(ramp, f[0], f[len(f)-1])
	return ramp, nil
}
