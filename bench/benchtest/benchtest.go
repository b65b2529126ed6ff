// Package benchtest runs trial descriptors under go test -bench.
package benchtest

import (
	"testing"

	"github.com/tezrry/spinbench/bench"
)

// Run executes d under testing.B: every worker gets b.N iterations and the
// trial's per-iteration time replaces the framework's ns/op.
func Run(b *testing.B, d bench.Descriptor, config ...bench.HarnessFunc) {
	b.Helper()
	b.StopTimer()

	pool, err := bench.NewPool(d.Threads)
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Release()

	d.Iterations = b.N
	h := bench.NewHarness(pool, config...)

	b.StartTimer()
	s, err := h.Run(b.Context(), d)
	b.StopTimer()
	if err != nil {
		b.Fatal(err)
	}

	b.ReportMetric(s.NsPerIteration(), "ns/op")
	if d.Repeat > 1 {
		b.ReportMetric(s.NsPerOp(), "ns/lock")
	}
	b.ReportMetric(s.Throughput(), "ops/s")
	if s.CPU > 0 {
		b.ReportMetric(s.CPUNsPerIteration(), "cpu-ns/op")
	}
}
