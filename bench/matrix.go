package bench

import (
	"github.com/tezrry/spinbench/clock"
	"github.com/tezrry/spinbench/container/lock"
	"github.com/tezrry/spinbench/util/math"
)

// DefaultThreads is the worker ladder 1, 2, 4, 8, 16.
func DefaultThreads() []int {
	ladder := math.PowersOfTwo(1, 16)
	out := make([]int, len(ladder))
	for i, n := range ladder {
		out[i] = int(n)
	}
	return out
}

// Matrix builds the variant × threads cross product of descriptors.
type Matrix struct {
	variants   []lock.Variant
	threads    []int
	iterations int
	repeat     int
	mode       clock.Mode
}

// NewMatrix starts with every variant, DefaultThreads, calibrated
// iterations, one acquisition per iteration and wall-clock timing.
func NewMatrix() *Matrix {
	return &Matrix{
		variants: lock.Variants(),
		threads:  DefaultThreads(),
		repeat:   1,
		mode:     clock.Wall,
	}
}

func (m *Matrix) Variants(v ...lock.Variant) *Matrix {
	m.variants = append([]lock.Variant(nil), v...)
	return m
}

func (m *Matrix) Threads(n ...int) *Matrix {
	m.threads = append([]int(nil), n...)
	return m
}

func (m *Matrix) Iterations(n int) *Matrix {
	m.iterations = n
	return m
}

func (m *Matrix) Repeat(n int) *Matrix {
	m.repeat = n
	return m
}

func (m *Matrix) Mode(mode clock.Mode) *Matrix {
	m.mode = mode
	return m
}

// Build returns the descriptors variant-major, threads-minor.
func (m *Matrix) Build() []Descriptor {
	out := make([]Descriptor, 0, len(m.variants)*len(m.threads))
	for _, v := range m.variants {
		for _, n := range m.threads {
			out = append(out, Descriptor{
				Variant:    v,
				Threads:    n,
				Iterations: m.iterations,
				Repeat:     m.repeat,
				Mode:       m.mode,
			})
		}
	}
	return out
}

// MaxThreads returns the largest thread count in ds, or 0.
func MaxThreads(ds []Descriptor) int {
	n := 0
	for _, d := range ds {
		if d.Threads > n {
			n = d.Threads
		}
	}
	return n
}
