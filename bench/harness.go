package bench

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/tezrry/spinbench/clock"
	"github.com/tezrry/spinbench/container/lock"
	"github.com/tezrry/spinbench/util/logging"
)

type HarnessFunc func(h *Harness)

// Harness runs one trial at a time on a pool of pre-spawned workers.
type Harness struct {
	pool        *ants.Pool
	factories   map[lock.Variant]lock.Factory
	workload    Workload
	lockThreads bool
}

// WithWorkload replaces Touch as the critical section. The entry-count check
// is skipped for custom workloads.
func WithWorkload(w Workload) HarnessFunc {
	return func(h *Harness) {
		h.workload = w
	}
}

// WithLockThreads pins every worker goroutine to its own OS thread for the
// duration of a trial.
func WithLockThreads(v bool) HarnessFunc {
	return func(h *Harness) {
		h.lockThreads = v
	}
}

// WithLockOptions rebuilds every factory with opts, e.g. to inject a no-op
// hint.
func WithLockOptions(opts ...lock.Option) HarnessFunc {
	return func(h *Harness) {
		for _, v := range lock.Variants() {
			h.factories[v] = v.Factory(opts...)
		}
	}
}

// WithFactory overrides the constructor of a single variant.
func WithFactory(v lock.Variant, f lock.Factory) HarnessFunc {
	return func(h *Harness) {
		h.factories[v] = f
	}
}

// NewPool pre-spawns size workers that are never purged, so no trial pays
// for goroutine creation. A panic inside a trial is a broken invariant and
// is re-raised instead of being swallowed by the pool.
func NewPool(size int) (*ants.Pool, error) {
	return ants.NewPool(size,
		ants.WithPreAlloc(true),
		ants.WithDisablePurge(true),
		ants.WithPanicHandler(func(p interface{}) {
			logging.GetDefaultLogger().Error("trial worker panicked", zap.Any("panic", p))
			panic(p)
		}),
	)
}

// NewHarness wraps pool. The pool must be able to run Threads workers at
// once for every descriptor passed to Run.
func NewHarness(pool *ants.Pool, config ...HarnessFunc) *Harness {
	h := &Harness{
		pool:        pool,
		factories:   make(map[lock.Variant]lock.Factory, 4),
		lockThreads: true,
	}
	for _, v := range lock.Variants() {
		h.factories[v] = v.Factory()
	}

	for _, cf := range config {
		cf(h)
	}
	return h
}

// Run executes one trial: build the shared lock, park Threads workers on a
// start gate, release them together, wait for all of them, then tear the
// lock down. Every worker times its own loop after it passes the gate; the
// sample's wall time is the mean of those per-worker times. Process CPU time
// and the gate-to-barrier span are read around the whole release.
func (h *Harness) Run(ctx context.Context, d Descriptor) (Sample, error) {
	if err := d.Validate(); err != nil {
		return Sample{}, err
	}
	if d.Iterations < 1 {
		return Sample{}, fmt.Errorf("%w: harness needs a fixed budget, got %d", ErrInvalidIterations, d.Iterations)
	}
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	factory, ok := h.factories[d.Variant]
	if !ok {
		return Sample{}, fmt.Errorf("%w: %s", ErrUnknownVariant, d.Variant)
	}
	if c := h.pool.Cap(); c > 0 && c < d.Threads {
		return Sample{}, fmt.Errorf("%w: need %d, capacity %d", ErrPoolExhausted, d.Threads, c)
	}

	trial := NewTrial(d, factory, h.workload)

	var ready, done sync.WaitGroup
	start := make(chan struct{})
	spans := make([]time.Duration, d.Threads)
	ready.Add(d.Threads)
	done.Add(d.Threads)
	for i := 0; i < d.Threads; i++ {
		if err := h.pool.Submit(h.worker(trial, &spans[i], &ready, &done, start)); err != nil {
			missing := d.Threads - i
			ready.Add(-missing)
			done.Add(-missing)
			ready.Wait()
			trial.Abort()
			close(start)
			done.Wait()
			return Sample{}, fmt.Errorf("submit worker %d of %s: %w", i, d.Name(), err)
		}
	}

	ready.Wait()
	trial.Begin()
	sw := clock.Start()
	close(start)
	done.Wait()
	span, cpu := sw.Stop()
	trial.Drain()
	entries := trial.Teardown()

	s := Sample{
		Descriptor: d,
		Wall:       meanSpan(spans),
		CPU:        cpu,
		Span:       span,
		Threads:    d.Threads,
		Iterations: d.Iterations,
		Ops:        d.Ops(),
		Entries:    entries,
	}
	if h.workload == nil {
		return s, verifyEntries(s)
	}
	return s, nil
}

func verifyEntries(s Sample) error {
	if int64(s.Entries) != s.Ops {
		return fmt.Errorf("%w: %s counted %d entries for %d acquisitions",
			ErrMutualExclusion, s.Descriptor.Name(), s.Entries, s.Ops)
	}
	return nil
}

func meanSpan(spans []time.Duration) time.Duration {
	if len(spans) == 0 {
		return 0
	}
	var sum time.Duration
	for _, s := range spans {
		sum += s
	}
	return sum / time.Duration(len(spans))
}

func (h *Harness) worker(t *Trial, span *time.Duration, ready, done *sync.WaitGroup, start <-chan struct{}) func() {
	return func() {
		defer done.Done()
		if h.lockThreads {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
		}

		ready.Done()
		<-start
		if t.Aborted() {
			return
		}
		*span = t.Work()
	}
}
