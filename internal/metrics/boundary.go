package metrics

import (
	"math"

	"github.com/san-kum/diffsim/internal/diffusion"
)

// BoundaryDrift is the largest change of either end value from step 0.
// Under Dirichlet boundaries it must stay exactly zero.
type BoundaryDrift struct {
	name        string
	left, right float64
	maxDrift    float64
	samples     int
}

func NewBoundaryDrift() *BoundaryDrift {
	return &BoundaryDrift{name: "boundary_drift"}
}

func (b *BoundaryDrift) Name() string { return b.name }

func (b *BoundaryDrift) Observe(_ int, _ float64, f diffusion.Field) {
	if len(f) == 0 {
		return
	}
	last := f[len(f)-1]
	if b.samples == 0 {
		b.left, b.right = f[0], last
	}
	b.samples++
	b.maxDrift = math.Max(b.maxDrift, math.Max(math.Abs(f[0]-b.left), math.Abs(last-b.right)))
}

func (b *BoundaryDrift) Value() float64 { return b.maxDrift }

func (b *BoundaryDrift) Reset() {
	b.left, b.right = 0, 0
	b.maxDrift = 0
	b.samples = 0
}
