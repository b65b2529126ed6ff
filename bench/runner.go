package bench

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/tezrry/spinbench/util/logging"
)

const (
	DefaultMinTime       = 500 * time.Millisecond
	DefaultMaxIterations = 1_000_000_000
)

// Sink receives every sample a Runner produces, in trial order.
type Sink interface {
	Record(s Sample) error
}

type SinkFunc func(s Sample) error

func (f SinkFunc) Record(s Sample) error {
	return f(s)
}

type RunnerFunc func(r *Runner)

// Runner plays a list of descriptors through one Harness.
type Runner struct {
	pool          *ants.Pool
	harness       *Harness
	harnessConfig []HarnessFunc
	logger        *zap.Logger
	minTime       time.Duration
	maxIterations int
	repetitions   int
	maxProcs      int
}

func WithLogger(l *zap.Logger) RunnerFunc {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithMinTime is the wall time a calibrated trial must reach.
func WithMinTime(d time.Duration) RunnerFunc {
	return func(r *Runner) {
		r.minTime = d
	}
}

func WithMaxIterations(n int) RunnerFunc {
	return func(r *Runner) {
		r.maxIterations = n
	}
}

// WithRepetitions runs every descriptor n times.
func WithRepetitions(n int) RunnerFunc {
	return func(r *Runner) {
		r.repetitions = n
	}
}

// WithMaxProcs sets GOMAXPROCS for the duration of Run. Zero keeps the
// runtime default.
func WithMaxProcs(n int) RunnerFunc {
	return func(r *Runner) {
		r.maxProcs = n
	}
}

func WithHarness(config ...HarnessFunc) RunnerFunc {
	return func(r *Runner) {
		r.harnessConfig = append(r.harnessConfig, config...)
	}
}

// NewRunner creates a Runner able to run trials of up to maxThreads workers.
func NewRunner(maxThreads int, config ...RunnerFunc) (*Runner, error) {
	if maxThreads < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidThreads, maxThreads)
	}

	r := &Runner{
		logger:        logging.GetDefaultLogger(),
		minTime:       DefaultMinTime,
		maxIterations: DefaultMaxIterations,
		repetitions:   1,
	}
	for _, cf := range config {
		cf(r)
	}

	if r.repetitions < 1 {
		return nil, fmt.Errorf("repetitions MUST be greater than 0, got %d", r.repetitions)
	}
	if r.maxIterations < 1 {
		return nil, fmt.Errorf("max iterations MUST be greater than 0, got %d", r.maxIterations)
	}
	if r.maxProcs < 0 {
		return nil, fmt.Errorf("max procs MUST NOT be negative, got %d", r.maxProcs)
	}

	pool, err := NewPool(maxThreads)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	r.pool = pool
	r.harness = NewHarness(pool, r.harnessConfig...)
	return r, nil
}

// Close releases the worker pool.
func (r *Runner) Close() {
	r.pool.Release()
}

// Run executes every descriptor in order, calibrating those without an
// iteration budget, and hands each sample to sink. It stops at the first
// error. ctx is only consulted between trials.
func (r *Runner) Run(ctx context.Context, ds []Descriptor, sink Sink) error {
	if n := MaxThreads(ds); n > r.pool.Cap() {
		return fmt.Errorf("%w: need %d, capacity %d", ErrPoolExhausted, n, r.pool.Cap())
	}
	for _, d := range ds {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("descriptor %s: %w", d.Name(), err)
		}
	}

	if r.maxProcs > 0 {
		prev := runtime.GOMAXPROCS(r.maxProcs)
		defer runtime.GOMAXPROCS(prev)
	}

	r.logger.Info("run started",
		zap.Int("trials", len(ds)),
		zap.Int("repetitions", r.repetitions),
		zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)),
		zap.Int("num_cpu", runtime.NumCPU()))

	for _, d := range ds {
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.Iterations == 0 {
			n, err := r.Calibrate(ctx, d)
			if err != nil {
				return fmt.Errorf("calibrate %s: %w", d.Name(), err)
			}
			d.Iterations = n
		}

		for rep := 0; rep < r.repetitions; rep++ {
			s, err := r.harness.Run(ctx, d)
			if err != nil {
				return fmt.Errorf("run %s: %w", d.Name(), err)
			}
			s.Repetition = rep

			r.logger.Debug("trial finished",
				zap.String("name", d.Name()),
				zap.Int("repetition", rep),
				zap.Int("iterations", s.Iterations),
				zap.Duration("wall", s.Wall),
				zap.Duration("cpu", s.CPU),
				zap.Duration("span", s.Span),
				zap.Float64("ns_per_iteration", s.NsPerIteration()),
				zap.Float64("ns_per_op", s.NsPerOp()),
				zap.Float64("ops_per_sec", s.Throughput()))

			if err = sink.Record(s); err != nil {
				return fmt.Errorf("record %s: %w", d.Name(), err)
			}
		}
	}
	return nil
}

// Calibrate grows the per-worker budget of d until one trial takes at least
// the runner's minimum wall time, the same way testing.B sizes b.N.
func (r *Runner) Calibrate(ctx context.Context, d Descriptor) (int, error) {
	n := 1
	for {
		d.Iterations = n
		s, err := r.harness.Run(ctx, d)
		if err != nil {
			return 0, err
		}
		if s.Wall >= r.minTime || n >= r.maxIterations {
			r.logger.Debug("calibrated",
				zap.String("name", d.Name()),
				zap.Int("iterations", n),
				zap.Duration("wall", s.Wall))
			return n, nil
		}
		n = predictN(r.minTime, s.Wall, n, r.maxIterations)
	}
}

func predictN(goal, prev time.Duration, prevN, maxN int) int {
	prevNs := prev.Nanoseconds()
	if prevNs <= 0 {
		prevNs = 1
	}

	n := goal.Nanoseconds() * int64(prevN) / prevNs
	n += n / 5
	n = min(n, 100*int64(prevN))
	n = max(n, int64(prevN)+1)
	n = min(n, int64(maxN))
	return int(n)
}
