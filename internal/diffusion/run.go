package diffusion

import (
	"context"
	"log/slog"
	"time"
)

// Run applies Step nt times to a copy of c0 and returns the final field.
// nt == 0 returns a copy equal to c0. c0 is never modified.
func Run(c0 Field, d, dx, dt float64, nt int) (Field, error) {
	if err := positive("D", d); err != nil {
		return nil, err
	}
	if err := positive("dx", dx); err != nil {
		return nil, err
	}
	if err := positive("dt", dt); err != nil {
		return nil, err
	}
	if nt < 0 {
		return nil, &InvalidParameterError{Name: "nt", Value: nt, Reason: "must be non-negative"}
	}

	it, err := NewIntegrator(c0, d, dt, dx, Dirichlet)
	if err != nil {
		return nil, err
	}
	it.Advance(nt)
	return it.cur, nil
}

// Snapshot is a copy of the field taken during a run.
type Snapshot struct {
	Step  int
	Time  float64
	Field Field
}

// Result holds copies of the field right after initialisation and after the
// last step. Mutating them does not affect the simulator.
type Result struct {
	Params    Params
	Boundary  Boundary
	Grid      Grid
	Initial   Field
	Final     Field
	Dt        float64
	Steps     int
	Time      float64
	Snapshots []Snapshot
	Metrics   map[string]float64
	Warnings  []error
	Elapsed   time.Duration
}

type Option func(*Simulator)

func WithBoundary(b Boundary) Option {
	return func(s *Simulator) { s.boundary = b }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStrictStability turns a StabilityWarning into a fatal error.
func WithStrictStability() Option {
	return func(s *Simulator) { s.strict = true }
}

// WithFieldValidation stops the run with ErrDiverged once NaN/Inf appears.
func WithFieldValidation() Option {
	return func(s *Simulator) { s.validate = true }
}

// WithSnapshotEvery records the field every n steps (and at the last step).
func WithSnapshotEvery(n int) Option {
	return func(s *Simulator) { s.snapshotEvery = n }
}

type Simulator struct {
	params        Params
	boundary      Boundary
	logger        *slog.Logger
	strict        bool
	validate      bool
	snapshotEvery int
	metrics       []Metric
	observers     []Observer
}

func New(p Params, opts ...Option) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		params:    p,
		boundary:  Dirichlet,
		logger:    slog.Default(),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.snapshotEvery < 0 {
		return nil, &InvalidParameterError{Name: "snapshot_every", Value: s.snapshotEvery, Reason: "must be non-negative"}
	}
	if _, ok := boundaryNames[s.boundary]; !ok {
		return nil, &InvalidParameterError{Name: "boundary", Value: s.boundary, Reason: "unknown boundary"}
	}
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() Params     { return s.params }
func (s *Simulator) Boundary() Boundary { return s.boundary }

// Initialize builds the grid and initial field for the configured params.
func (s *Simulator) Initialize() (Grid, Field, error) {
	return Initialize(s.params.Lx, s.params.Dx, s.params.CLeft, s.params.CRight)
}

// Stability reports a *StabilityWarning when the effective dt is unstable.
func (s *Simulator) Stability() error {
	return CheckStability(s.params.D, s.params.Dx, s.params.TimeStep())
}

// Integrator returns a fresh integrator positioned at the initial field.
func (s *Simulator) Integrator() (Grid, *Integrator, error) {
	g, c0, err := s.Initialize()
	if err != nil {
		return Grid{}, nil, err
	}
	it, err := NewIntegrator(c0, s.params.D, s.params.TimeStep(), s.params.Dx, s.boundary)
	if err != nil {
		return Grid{}, nil, err
	}
	return g, it, nil
}

// Run initialises the field and applies exactly Nt steps. With field
// validation enabled a diverged field stops the run early; the partial
// result is returned together with a *StepError.
func (s *Simulator) Run() (*Result, error) {
	return s.RunContext(context.Background())
}

// RunContext is Run with cancellation checked before every step. On
// cancellation the partial result is returned with ctx.Err().
func (s *Simulator) RunContext(ctx context.Context) (*Result, error) {
	p := s.params
	dt := p.TimeStep()

	result := &Result{
		Params:   p,
		Boundary: s.boundary,
		Dt:       dt,
		Metrics:  make(map[string]float64),
		Warnings: make([]error, 0),
	}

	if warn := s.Stability(); warn != nil {
		if s.strict {
			return nil, warn
		}
		s.logger.Warn("explicit scheme may diverge",
			"dt", dt,
			"limit", StableDt(p.D, p.Dx),
			"coefficient", p.Coefficient(),
		)
		result.Warnings = append(result.Warnings, warn)
	}

	g, it, err := s.Integrator()
	if err != nil {
		return nil, err
	}
	result.Grid = g
	result.Initial = it.Field()

	s.logger.Debug("diffusion run starting",
		"nx", g.Len(),
		"steps", p.Nt,
		"dt", dt,
		"boundary", s.boundary.String(),
	)

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(0, 0, it.cur)
	}
	if s.snapshotEvery > 0 {
		result.Snapshots = append(result.Snapshots, Snapshot{Step: 0, Time: 0, Field: it.Field()})
	}

	start := time.Now()
	var runErr error
	for k := 1; k <= p.Nt; k++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		it.step()
		t := it.Time()

		if s.validate && !it.cur.IsValid() {
			runErr = &StepError{Step: k, Time: t, Wrapped: ErrDiverged}
			break
		}

		for _, m := range s.metrics {
			m.Observe(k, t, it.cur)
		}
		for _, obs := range s.observers {
			obs.OnStep(k, t, it.cur)
		}
		if s.snapshotEvery > 0 && (k%s.snapshotEvery == 0 || k == p.Nt) {
			result.Snapshots = append(result.Snapshots, Snapshot{Step: k, Time: t, Field: it.Field()})
		}
	}

	result.Elapsed = time.Since(start)
	result.Steps = it.Steps()
	result.Time = it.Time()
	result.Final = it.Field()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if runErr != nil {
		s.logger.Error("diffusion run stopped", "step", result.Steps, "error", runErr)
		return result, runErr
	}

	s.logger.Info("diffusion run complete",
		"nx", g.Len(),
		"steps", result.Steps,
		"time", result.Time,
		"elapsed", result.Elapsed,
	)
	return result, nil
}
