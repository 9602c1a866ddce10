package diffusion_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/diffsim/internal/diffusion"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingMetric struct {
	observed int
	lastStep int
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(step int, _ float64, _ diffusion.Field) {
	c.observed++
	c.lastStep = step
}
func (c *countingMetric) Value() float64 { return float64(c.observed) }
func (c *countingMetric) Reset()         { c.observed, c.lastStep = 0, 0 }

func maxAbsDiff(a, b diffusion.Field) float64 {
	worst := 0.0
	for i := range a {
		worst = math.Max(worst, math.Abs(a[i]-b[i]))
	}
	return worst
}

func sum(f diffusion.Field) float64 {
	total := 0.0
	for _, v := range f {
		total += v
	}
	return total
}

var _ = Describe("Simulator", func() {
	Context("with the notebook parameters", func() {
		var (
			sim    *diffusion.Simulator
			result *diffusion.Result
			drift  bool
			rises  int
		)

		BeforeEach(func() {
			var err error
			sim, err = diffusion.New(diffusion.DefaultParams(), diffusion.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			drift, rises = false, 0
			sim.AddObserver(diffusion.ObserverFunc(func(_ int, _ float64, f diffusion.Field) {
				if f[0] != 500 || f[len(f)-1] != 0 {
					drift = true
				}
				for i := 1; i < len(f); i++ {
					if f[i] > f[i-1]+1e-9 {
						rises++
					}
				}
			}))

			result, err = sim.Run()
			Expect(err).NotTo(HaveOccurred())
		})

		It("runs exactly nt steps with the stable default dt", func() {
			Expect(result.Steps).To(Equal(5000))
			Expect(result.Dt).To(Equal(0.00125))
			Expect(result.Time).To(BeNumerically("~", 6.25, 1e-9))
			Expect(result.Warnings).To(BeEmpty())
		})

		It("holds both boundary values exactly at every step", func() {
			Expect(drift).To(BeFalse())
			Expect(result.Final[0]).To(Equal(500.0))
			Expect(result.Final[len(result.Final)-1]).To(Equal(0.0))
		})

		It("keeps the profile monotonically non-increasing", func() {
			Expect(rises).To(BeZero())
		})

		It("moves the profile towards the linear ramp", func() {
			ramp, err := diffusion.SteadyState(result.Grid, result.Final)
			Expect(err).NotTo(HaveOccurred())
			Expect(maxAbsDiff(result.Final, ramp)).To(BeNumerically("<", maxAbsDiff(result.Initial, ramp)))
		})

		It("exposes the untouched initial profile", func() {
			_, c0, err := sim.Initialize()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Initial.Equal(c0)).To(BeTrue())
			Expect(result.Final.Equal(c0)).To(BeFalse())
		})
	})

	It("converges to the linear ramp on a short domain", func() {
		p := diffusion.Params{D: 1, Lx: 10, Dx: 0.5, CLeft: 500, CRight: 0, Nt: 5000}
		sim, err := diffusion.New(p, diffusion.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())

		result, err := sim.Run()
		Expect(err).NotTo(HaveOccurred())

		ramp, err := diffusion.SteadyState(result.Grid, result.Final)
		Expect(err).NotTo(HaveOccurred())
		Expect(ramp[0]).To(Equal(500.0))
		Expect(ramp[len(ramp)-1]).To(Equal(0.0))
		Expect(maxAbsDiff(result.Final, ramp)).To(BeNumerically("<", 1.0))
	})

	It("produces bit-identical results across runs", func() {
		p := diffusion.Params{D: 2, Lx: 40, Dx: 0.5, CLeft: 1, CRight: -1, Nt: 300}
		a, err := diffusion.New(p, diffusion.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())
		b, err := diffusion.New(p, diffusion.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())

		ra, err := a.Run()
		Expect(err).NotTo(HaveOccurred())
		rb, err := b.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(ra.Final.Equal(rb.Final)).To(BeTrue())
	})

	It("returns the initial field for zero steps", func() {
		p := diffusion.DefaultParams()
		p.Nt = 0
		sim, err := diffusion.New(p, diffusion.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())
		result, err := sim.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Steps).To(BeZero())
		Expect(result.Final.Equal(result.Initial)).To(BeTrue())
	})

	DescribeTable("conserves mass without sources",
		func(b diffusion.Boundary, mass func(diffusion.Field) float64) {
			p := diffusion.Params{D: 1, Lx: 50, Dx: 0.5, CLeft: 500, CRight: 0, Nt: 2000}
			sim, err := diffusion.New(p, diffusion.WithBoundary(b), diffusion.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())
			result, err := sim.Run()
			Expect(err).NotTo(HaveOccurred())

			before := mass(result.Initial)
			Expect(mass(result.Final)).To(BeNumerically("~", before, before*1e-9))
			Expect(result.Final.Equal(result.Initial)).To(BeFalse())
		},
		Entry("periodic keeps the plain sum", diffusion.Periodic, sum),
		Entry("reflective keeps the trapezoidal sum", diffusion.Reflective, func(f diffusion.Field) float64 {
			return sum(f) - (f[0]+f[len(f)-1])/2
		}),
	)

	It("loses mass through Dirichlet boundaries", func() {
		p := diffusion.Params{D: 1, Lx: 10, Dx: 0.5, CLeft: 500, CRight: 0, Nt: 2000}
		sim, err := diffusion.New(p, diffusion.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())
		result, err := sim.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(sum(result.Final)).NotTo(BeNumerically("~", sum(result.Initial), 1))
	})

	Context("above the stability bound", func() {
		unstable := diffusion.Params{D: 1, Lx: 10, Dx: 0.5, CLeft: 500, CRight: 0, Nt: 3000, Dt: 0.25}

		It("fails fast in strict mode", func() {
			sim, err := diffusion.New(unstable, diffusion.WithStrictStability(), diffusion.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())
			result, err := sim.Run()
			Expect(err).To(MatchError(diffusion.ErrUnstable))
			Expect(result).To(BeNil())
		})

		It("warns and keeps stepping otherwise", func() {
			sim, err := diffusion.New(unstable, diffusion.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())
			result, err := sim.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Steps).To(Equal(3000))
			Expect(result.Warnings).To(HaveLen(1))
			Expect(result.Warnings[0]).To(MatchError(diffusion.ErrUnstable))
			Expect(result.Final.IsValid()).To(BeFalse())
		})

		It("stops on divergence when validating the field", func() {
			sim, err := diffusion.New(unstable, diffusion.WithFieldValidation(), diffusion.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())
			result, err := sim.Run()
			Expect(err).To(MatchError(diffusion.ErrDiverged))

			var serr *diffusion.StepError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Step).To(BeNumerically("<", 3000))
			Expect(result).NotTo(BeNil())
			Expect(result.Steps).To(Equal(serr.Step))
		})
	})

	It("observes metrics at step zero and after every step", func() {
		p := diffusion.Params{D: 1, Lx: 10, Dx: 0.5, CLeft: 1, CRight: 0, Nt: 40}
		sim, err := diffusion.New(p, diffusion.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())
		m := &countingMetric{}
		sim.AddMetric(m)

		result, err := sim.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Metrics).To(HaveKeyWithValue("count", 41.0))
		Expect(m.lastStep).To(Equal(40))
	})

	It("records snapshots on the configured cadence", func() {
		p := diffusion.Params{D: 1, Lx: 10, Dx: 0.5, CLeft: 1, CRight: 0, Nt: 250}
		sim, err := diffusion.New(p, diffusion.WithSnapshotEvery(100), diffusion.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())
		result, err := sim.Run()
		Expect(err).NotTo(HaveOccurred())

		steps := make([]int, 0, len(result.Snapshots))
		for _, s := range result.Snapshots {
			steps = append(steps, s.Step)
		}
		Expect(steps).To(Equal([]int{0, 100, 200, 250}))
		Expect(result.Snapshots[3].Field.Equal(result.Final)).To(BeTrue())
	})

	DescribeTable("rejects invalid params",
		func(mutate func(*diffusion.Params), name string) {
			p := diffusion.DefaultParams()
			mutate(&p)
			_, err := diffusion.New(p)
			var perr *diffusion.InvalidParameterError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Name).To(Equal(name))
		},
		Entry("zero diffusivity", func(p *diffusion.Params) { p.D = 0 }, "D"),
		Entry("negative length", func(p *diffusion.Params) { p.Lx = -3 }, "Lx"),
		Entry("zero spacing", func(p *diffusion.Params) { p.Dx = 0 }, "dx"),
		Entry("negative steps", func(p *diffusion.Params) { p.Nt = -1 }, "nt"),
		Entry("negative dt", func(p *diffusion.Params) { p.Dt = -0.1 }, "dt"),
		Entry("NaN left value", func(p *diffusion.Params) { p.CLeft = math.NaN() }, "C_left"),
	)

	It("rejects a negative snapshot cadence", func() {
		_, err := diffusion.New(diffusion.DefaultParams(), diffusion.WithSnapshotEvery(-1))
		Expect(err).To(MatchError(diffusion.ErrInvalidParameter))
	})

	It("stops before the first step when the context is cancelled", func() {
		sim, err := diffusion.New(diffusion.DefaultParams(), diffusion.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := sim.RunContext(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(result.Steps).To(BeZero())
		Expect(result.Final.Equal(result.Initial)).To(BeTrue())
	})
})
