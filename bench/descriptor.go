package bench

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tezrry/spinbench/clock"
	"github.com/tezrry/spinbench/container/lock"
)

// Descriptor fully describes one trial. It is a value: copy it, never share
// a pointer to it between trials.
type Descriptor struct {
	Variant lock.Variant
	// Threads is the number of workers contending for the one shared lock.
	Threads int
	// Iterations is the measured iteration budget of each worker. Zero asks
	// the Runner to calibrate it.
	Iterations int
	// Repeat is the number of lock/workload/unlock rounds per iteration.
	// Larger values amortize clock overhead over more acquisitions.
	Repeat int
	Mode   clock.Mode
}

// Name renders the trial the way the benchmark registry names it, e.g.
// HeavyContention128<spin>/real_time/threads:8. The iteration budget is left
// out so calibrated and fixed runs of one configuration share a name.
func (d Descriptor) Name() string {
	return fmt.Sprintf("%s/threads:%d", d.Family(), d.Threads)
}

// Family is Name without the thread count: every trial of one variant,
// repeat and mode shares it. A batched trial is its own benchmark function,
// HeavyContention<R>, so the first path segment after it is still the mode.
func (d Descriptor) Family() string {
	var sb strings.Builder
	sb.WriteString("HeavyContention")
	if d.Repeat > 1 {
		sb.WriteString(strconv.Itoa(d.Repeat))
	}
	sb.WriteByte('<')
	sb.WriteString(d.Variant.String())
	sb.WriteByte('>')
	if d.Mode == clock.Wall {
		sb.WriteString("/real_time")
	}
	return sb.String()
}

// Validate checks everything the harness needs before it touches a lock.
// Iterations == 0 is accepted here; the harness itself requires > 0.
func (d Descriptor) Validate() error {
	if !d.Variant.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, d.Variant)
	}
	if d.Threads < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidThreads, d.Threads)
	}
	if d.Iterations < 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidIterations, d.Iterations)
	}
	if d.Repeat < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidRepeat, d.Repeat)
	}
	if !d.Mode.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownMode, d.Mode)
	}
	return nil
}

// Ops is the total number of acquisitions the trial performs.
func (d Descriptor) Ops() int64 {
	return int64(d.Threads) * int64(d.Iterations) * int64(d.Repeat)
}
