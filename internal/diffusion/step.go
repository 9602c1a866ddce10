package diffusion

// Step advances c by one FTCS step with fixed (Dirichlet) end values and
// returns the new field. c is read as a snapshot and left untouched.
func Step(c Field, d, dt, dx float64) (Field, error) {
	return StepBoundary(c, d, dt, dx, Dirichlet)
}

// StepBoundary is Step with a selectable boundary variant.
func StepBoundary(c Field, d, dt, dx float64, b Boundary) (Field, error) {
	if len(c) < MinPoints {
		return nil, &InvalidGridError{Points: len(c)}
	}
	next := make(Field, len(c))
	apply(next, c, Coefficient(d, dt, dx), b)
	return next, nil
}

// apply writes one step of src into dst. dst and src must not alias.
func apply(dst, src Field, r float64, b Boundary) {
	n := len(src)
	for i := 1; i < n-1; i++ {
		dst[i] = src[i] + r*(src[i-1]-2*src[i]+src[i+1])
	}

	switch b {
	case Periodic:
		dst[0] = src[0] + r*(src[n-1]-2*src[0]+src[1])
		dst[n-1] = src[n-1] + r*(src[n-2]-2*src[n-1]+src[0])
	case Reflective:
		// ghost node mirrors the first interior neighbour
		dst[0] = src[0] + 2*r*(src[1]-src[0])
		dst[n-1] = src[n-1] + 2*r*(src[n-2]-src[n-1])
	default:
		dst[0] = src[0]
		dst[n-1] = src[n-1]
	}
}

// Integrator steps a field in place using two alternating buffers.
type Integrator struct {
	r        float64
	dt       float64
	boundary Boundary
	cur      Field
	scratch  Field
	steps    int
}

// NewIntegrator copies c0 and prepares the scratch buffer.
func NewIntegrator(c0 Field, d, dt, dx float64, b Boundary) (*Integrator, error) {
	if len(c0) < MinPoints {
		return nil, &InvalidGridError{Points: len(c0)}
	}
	return &Integrator{
		r:        Coefficient(d, dt, dx),
		dt:       dt,
		boundary: b,
		cur:      c0.Clone(),
		scratch:  make(Field, len(c0)),
	}, nil
}

// Advance applies n steps.
func (it *Integrator) Advance(n int) {
	for k := 0; k < n; k++ {
		it.step()
	}
}

func (it *Integrator) step() {
	apply(it.scratch, it.cur, it.r, it.boundary)
	it.cur, it.scratch = it.scratch, it.cur
	it.steps++
}

// Field returns a copy of the current field.
func (it *Integrator) Field() Field { return it.cur.Clone() }

func (it *Integrator) Steps() int         { return it.steps }
func (it *Integrator) Time() float64      { return float64(it.steps) * it.dt }
func (it *Integrator) Boundary() Boundary { return it.boundary }

// Reset restarts from c0, which must match the current field length.
func (it *Integrator) Reset(c0 Field) error {
	if len(c0) != len(it.cur) {
		return &InvalidParameterError{Name: "field", Value: len(c0), Reason: "length does not match integrator"}
	}
	copy(it.cur, c0)
	it.steps = 0
	return nil
}
