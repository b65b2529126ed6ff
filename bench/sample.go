package bench

import (
	"time"

	"github.com/tezrry/spinbench/clock"
)

// Sample is what one trial hands to the measurement side.
type Sample struct {
	Descriptor Descriptor
	// Repetition is the zero-based index of this run among repeated runs of
	// the same descriptor.
	Repetition int

	// Wall is the mean of the workers' own loop times.
	Wall time.Duration
	// CPU is the process CPU time consumed from the gate opening to the
	// last worker returning.
	CPU time.Duration
	// Span is the wall time from the gate opening to the last worker
	// returning, barrier wake-ups included.
	Span time.Duration

	Threads int
	// Iterations completed by each worker.
	Iterations int
	// Ops is the total number of acquisitions across all workers.
	Ops int64
	// Entries is the critical-section counter read at teardown.
	Entries uint64
}

// Elapsed returns the time base selected by the descriptor's mode.
func (s Sample) Elapsed() time.Duration {
	if s.Descriptor.Mode == clock.CPU {
		return s.CPU
	}
	return s.Wall
}

// NsPerIteration divides elapsed time by the per-worker iteration count,
// the convention multi-threaded benchmark runners use for real time.
func (s Sample) NsPerIteration() float64 {
	if s.Iterations == 0 {
		return 0
	}
	return float64(s.Elapsed().Nanoseconds()) / float64(s.Iterations)
}

// NsPerOp is NsPerIteration spread over the Repeat acquisitions of one
// iteration.
func (s Sample) NsPerOp() float64 {
	r := s.Descriptor.Repeat
	if r < 1 {
		r = 1
	}
	return s.NsPerIteration() / float64(r)
}

// CPUNsPerIteration is NsPerIteration computed on the CPU clock regardless
// of mode.
func (s Sample) CPUNsPerIteration() float64 {
	if s.Iterations == 0 {
		return 0
	}
	return float64(s.CPU.Nanoseconds()) / float64(s.Iterations)
}

// WallNsPerIteration is NsPerIteration computed on the wall clock regardless
// of mode.
func (s Sample) WallNsPerIteration() float64 {
	if s.Iterations == 0 {
		return 0
	}
	return float64(s.Wall.Nanoseconds()) / float64(s.Iterations)
}

// Throughput is acquisitions per wall-clock second across all workers.
func (s Sample) Throughput() float64 {
	secs := s.Wall.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(s.Ops) / secs
}
