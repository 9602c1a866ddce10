package diffusion_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/diffsim/internal/diffusion"
)

var _ = Describe("Initialize", func() {
	It("builds the notebook grid with nx = ceil(Lx/dx)", func() {
		g, c, err := diffusion.Initialize(300, 0.5, 500, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Len()).To(Equal(600))
		Expect(c).To(HaveLen(600))
		Expect(g.At(0)).To(Equal(0.0))
		Expect(g.Last()).To(Equal(299.5))
	})

	It("assigns the midpoint grid point to the left value", func() {
		g, c, err := diffusion.Initialize(300, 0.5, 500, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.At(300)).To(Equal(150.0))
		Expect(c[300]).To(Equal(500.0))
		Expect(c[301]).To(Equal(0.0))
		Expect(c[0]).To(Equal(500.0))
		Expect(c[599]).To(Equal(0.0))
	})

	It("rounds the point count up when dx does not divide Lx", func() {
		g, _, err := diffusion.Initialize(1.0, 0.3, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Len()).To(Equal(4))
		Expect(g.Last()).To(BeNumerically("<", 1.0))
	})

	It("returns a copy from Points", func() {
		g, _, err := diffusion.Initialize(10, 1, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		pts := g.Points()
		pts[0] = 42
		Expect(g.At(0)).To(Equal(0.0))
	})

	DescribeTable("rejects invalid parameters",
		func(lx, dx float64, name string) {
			_, _, err := diffusion.Initialize(lx, dx, 1, 0)
			Expect(err).To(MatchError(diffusion.ErrInvalidParameter))
			var perr *diffusion.InvalidParameterError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Name).To(Equal(name))
		},
		Entry("zero length", 0.0, 0.5, "Lx"),
		Entry("negative length", -1.0, 0.5, "Lx"),
		Entry("zero spacing", 10.0, 0.0, "dx"),
		Entry("negative spacing", 10.0, -0.5, "dx"),
	)

	It("rejects grids with fewer than three points", func() {
		_, _, err := diffusion.Initialize(1, 0.5, 1, 0)
		var gerr *diffusion.InvalidGridError
		Expect(errors.As(err, &gerr)).To(BeTrue())
		Expect(gerr.Points).To(Equal(2))
		Expect(err).To(MatchError(diffusion.ErrInvalidParameter))
	})
})

var _ = Describe("Step", func() {
	It("applies the FTCS stencil to interior points", func() {
		next, err := diffusion.Step(diffusion.Field{0, 10, 0}, 1, 0.25, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(diffusion.Field{0, 5, 0}))
	})

	It("updates every interior point from the old field", func() {
		next, err := diffusion.Step(diffusion.Field{0, 0, 1, 0, 0}, 1, 0.5, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(diffusion.Field{0, 0.5, 0, 0.5, 0}))
	})

	It("leaves the input and the boundary values untouched", func() {
		c := diffusion.Field{7, 3, 9, 1, -2}
		orig := c.Clone()
		next, err := diffusion.Step(c, 2, 0.1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(orig))
		Expect(next[0]).To(Equal(7.0))
		Expect(next[4]).To(Equal(-2.0))
	})

	It("fails on fields shorter than three points", func() {
		_, err := diffusion.Step(diffusion.Field{1, 2}, 1, 0.1, 1)
		var gerr *diffusion.InvalidGridError
		Expect(errors.As(err, &gerr)).To(BeTrue())
	})

	It("wraps the ring for periodic boundaries", func() {
		next, err := diffusion.StepBoundary(diffusion.Field{1, 0, 0, 0}, 1, 0.25, 1, diffusion.Periodic)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(diffusion.Field{0.5, 0.25, 0, 0.25}))
	})

	It("mirrors the neighbour for reflective boundaries", func() {
		next, err := diffusion.StepBoundary(diffusion.Field{1, 0, 0}, 1, 0.25, 1, diffusion.Reflective)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(diffusion.Field{0.5, 0.25, 0}))
	})
})

var _ = Describe("Run", func() {
	var c0 diffusion.Field

	BeforeEach(func() {
		var err error
		_, c0, err = diffusion.Initialize(50, 0.5, 500, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns an identical copy for zero steps", func() {
		out, err := diffusion.Run(c0, 1, 0.5, 0.125, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Equal(c0)).To(BeTrue())
		out[1] = -1
		Expect(c0[1]).To(Equal(500.0))
	})

	It("matches repeated single steps", func() {
		want := c0
		for i := 0; i < 25; i++ {
			var err error
			want, err = diffusion.Step(want, 1, 0.125, 0.5)
			Expect(err).NotTo(HaveOccurred())
		}
		got, err := diffusion.Run(c0, 1, 0.5, 0.125, 25)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(want)).To(BeTrue())
	})

	It("is deterministic", func() {
		a, err := diffusion.Run(c0, 1, 0.5, 0.125, 400)
		Expect(err).NotTo(HaveOccurred())
		b, err := diffusion.Run(c0, 1, 0.5, 0.125, 400)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Equal(b)).To(BeTrue())
	})

	It("does not modify its input", func() {
		orig := c0.Clone()
		_, err := diffusion.Run(c0, 1, 0.5, 0.125, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(c0.Equal(orig)).To(BeTrue())
	})

	DescribeTable("rejects invalid arguments",
		func(d, dx, dt float64, nt int) {
			_, err := diffusion.Run(c0, d, dx, dt, nt)
			Expect(err).To(MatchError(diffusion.ErrInvalidParameter))
		},
		Entry("negative steps", 1.0, 0.5, 0.1, -1),
		Entry("zero diffusivity", 0.0, 0.5, 0.1, 1),
		Entry("zero spacing", 1.0, 0.0, 0.1, 1),
		Entry("zero time step", 1.0, 0.5, 0.0, 1),
	)

	It("rejects short fields", func() {
		_, err := diffusion.Run(diffusion.Field{1, 0}, 1, 0.5, 0.1, 0)
		Expect(err).To(MatchError(diffusion.ErrInvalidParameter))
	})
})

var _ = Describe("Integrator", func() {
	It("advances, counts steps and resets", func() {
		c0 := diffusion.Field{1, 0, 0, 0, 0}
		it, err := diffusion.NewIntegrator(c0, 1, 0.5, 1, diffusion.Dirichlet)
		Expect(err).NotTo(HaveOccurred())

		it.Advance(4)
		Expect(it.Steps()).To(Equal(4))
		Expect(it.Time()).To(Equal(2.0))

		want, err := diffusion.Run(c0, 1, 1, 0.5, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(it.Field().Equal(want)).To(BeTrue())

		Expect(it.Reset(c0)).To(Succeed())
		Expect(it.Steps()).To(Equal(0))
		Expect(it.Field().Equal(c0)).To(BeTrue())

		Expect(it.Reset(diffusion.Field{1, 2, 3})).To(MatchError(diffusion.ErrInvalidParameter))
	})
})

var _ = Describe("Stability", func() {
	It("accepts the default step", func() {
		dt := diffusion.StableDt(100, 0.5)
		Expect(dt).To(Equal(0.00125))
		Expect(diffusion.CheckStability(100, 0.5, dt)).To(Succeed())
	})

	It("warns above the bound", func() {
		err := diffusion.CheckStability(100, 0.5, 0.0015)
		Expect(err).To(MatchError(diffusion.ErrUnstable))
		var warn *diffusion.StabilityWarning
		Expect(errors.As(err, &warn)).To(BeTrue())
		Expect(warn.Limit).To(Equal(0.00125))
		Expect(warn.Coefficient).To(BeNumerically("~", 0.6, 1e-12))
	})
})

var _ = Describe("Boundary", func() {
	DescribeTable("parses names",
		func(in string, want diffusion.Boundary) {
			b, err := diffusion.ParseBoundary(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(Equal(want))
			Expect(b.String()).To(Equal(want.String()))
		},
		Entry("empty", "", diffusion.Dirichlet),
		Entry("dirichlet", "dirichlet", diffusion.Dirichlet),
		Entry("periodic", "Periodic", diffusion.Periodic),
		Entry("reflective", "REFLECTIVE", diffusion.Reflective),
	)

	It("rejects unknown names", func() {
		_, err := diffusion.ParseBoundary("neumann")
		Expect(err).To(MatchError(diffusion.ErrInvalidParameter))
	})
})
