package bench

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tezrry/spinbench/clock"
	"github.com/tezrry/spinbench/container/lock"
)

func TestDefaultThreads(t *testing.T) {
	require.Equal(t, []int{1, 2, 4, 8, 16}, DefaultThreads())
}

func TestMatrixBuild(t *testing.T) {
	ds := NewMatrix().Build()
	require.Len(t, ds, len(lock.Variants())*5)

	// variant-major, threads-minor
	require.Equal(t, lock.NoBackoff, ds[0].Variant)
	require.Equal(t, 1, ds[0].Threads)
	require.Equal(t, 16, ds[4].Threads)
	require.Equal(t, lock.CooperativeYield, ds[5].Variant)
	require.Equal(t, lock.Baseline, ds[len(ds)-1].Variant)

	for _, d := range ds {
		require.Equal(t, 1, d.Repeat)
		require.Equal(t, 0, d.Iterations)
		require.Equal(t, clock.Wall, d.Mode)
		require.NoError(t, d.Validate())
	}
	require.Equal(t, 16, MaxThreads(ds))
}

func TestMatrixCustom(t *testing.T) {
	ds := NewMatrix().
		Variants(lock.HardwarePause, lock.Baseline).
		Threads(3, 7).
		Iterations(10).
		Repeat(128).
		Mode(clock.CPU).
		Build()

	require.Equal(t, []Descriptor{
		{Variant: lock.HardwarePause, Threads: 3, Iterations: 10, Repeat: 128, Mode: clock.CPU},
		{Variant: lock.HardwarePause, Threads: 7, Iterations: 10, Repeat: 128, Mode: clock.CPU},
		{Variant: lock.Baseline, Threads: 3, Iterations: 10, Repeat: 128, Mode: clock.CPU},
		{Variant: lock.Baseline, Threads: 7, Iterations: 10, Repeat: 128, Mode: clock.CPU},
	}, ds)
	require.Equal(t, 7, MaxThreads(ds))
	require.Zero(t, MaxThreads(nil))
}

func TestDescriptorName(t *testing.T) {
	d := Descriptor{Variant: lock.NoBackoff, Threads: 8, Repeat: 1}
	require.Equal(t, "HeavyContention<spin>/real_time/threads:8", d.Name())

	d = Descriptor{Variant: lock.Baseline, Threads: 2, Iterations: 50, Repeat: 128, Mode: clock.CPU}
	require.Equal(t, "HeavyContention128<mutex>/threads:2", d.Name())
	require.Equal(t, "HeavyContention128<mutex>", d.Family())

	d.Mode = clock.Wall
	require.Equal(t, "HeavyContention128<mutex>/real_time/threads:2", d.Name())
}

// Result consumers take everything before the first '/' as the benchmark and
// the number after the first ':' of the rest as the thread count.
func TestDescriptorNameSplitsIntoThreads(t *testing.T) {
	for _, d := range NewMatrix().Threads(1, 16).Repeat(128).Build() {
		name := d.Name()
		fn, rest, ok := strings.Cut(name, "/")
		require.True(t, ok, name)
		require.Equal(t, d.Family(), fn+"/real_time")

		_, threads, ok := strings.Cut(rest, ":")
		require.True(t, ok, name)
		n, err := strconv.Atoi(threads)
		require.NoError(t, err, name)
		require.Equal(t, d.Threads, n)
	}
}

func TestDescriptorValidate(t *testing.T) {
	ok := Descriptor{Variant: lock.NoBackoff, Threads: 1, Iterations: 1, Repeat: 1}
	require.NoError(t, ok.Validate())
	require.Equal(t, int64(1), ok.Ops())

	bad := ok
	bad.Threads = 0
	require.ErrorIs(t, bad.Validate(), ErrInvalidThreads)

	bad = ok
	bad.Iterations = -1
	require.ErrorIs(t, bad.Validate(), ErrInvalidIterations)

	bad = ok
	bad.Repeat = 0
	require.ErrorIs(t, bad.Validate(), ErrInvalidRepeat)

	bad = ok
	bad.Variant = lock.Variant(42)
	require.ErrorIs(t, bad.Validate(), ErrUnknownVariant)

	bad = ok
	bad.Mode = clock.Mode(7)
	require.ErrorIs(t, bad.Validate(), ErrUnknownMode)
}
