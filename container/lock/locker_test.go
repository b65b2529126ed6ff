package lock

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tezrry/spinbench/container/lock/idle"
)

type lockedReporter interface {
	Locker
	Locked() bool
}

func testLockers() map[string]Factory {
	return map[string]Factory{
		"spin":       NoBackoff.Factory(),
		"yield":      CooperativeYield.Factory(),
		"os_yield":   CooperativeYield.Factory(WithYielder(idle.OSYield)),
		"pause":      HardwarePause.Factory(),
		"pause_noop": HardwarePause.Factory(WithHint(idle.Noop)),
		"mutex":      Baseline.Factory(),
	}
}

func TestLockUnlockClosure(t *testing.T) {
	for name, f := range testLockers() {
		t.Run(name, func(t *testing.T) {
			lk := f()
			done := make(chan struct{})
			go func() {
				for i := 0; i < 10000; i++ {
					lk.Lock()
					lk.Unlock()
				}
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(10 * time.Second):
				t.Fatal("uncontended lock/unlock did not finish")
			}

			if r, ok := lk.(lockedReporter); ok {
				require.False(t, r.Locked())
			}
		})
	}
}

func TestZeroValueLocks(t *testing.T) {
	lockers := []lockedReporter{new(Spin), new(Yield), new(Pause)}
	for _, lk := range lockers {
		lk.Lock()
		require.True(t, lk.Locked())
		lk.Unlock()
		require.False(t, lk.Locked())
	}

	var m Mutex
	m.Lock()
	m.Unlock()
}

func TestMutualExclusion(t *testing.T) {
	const (
		nWorker = 8
		num     = 2000
	)

	for name, f := range testLockers() {
		t.Run(name, func(t *testing.T) {
			lk := f()
			var (
				inside     atomic.Int32
				violations atomic.Int32
				counter    int
			)

			var g errgroup.Group
			for w := 0; w < nWorker; w++ {
				g.Go(func() error {
					for i := 0; i < num; i++ {
						lk.Lock()
						if inside.Add(1) != 1 {
							violations.Add(1)
						}
						counter++
						inside.Add(-1)
						lk.Unlock()
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())

			require.Zero(t, violations.Load())
			require.Equal(t, nWorker*num, counter)
		})
	}
}

// A writer fills every slot with the same generation inside the critical
// section; a reader that takes the lock afterwards must never see a torn
// generation.
func TestReleaseAcquireOrdering(t *testing.T) {
	const (
		nWriter = 4
		nReader = 4
		num     = 1000
	)

	for name, f := range testLockers() {
		t.Run(name, func(t *testing.T) {
			lk := f()
			var (
				slots [8]int
				gen   int
			)

			var g errgroup.Group
			for w := 0; w < nWriter; w++ {
				g.Go(func() error {
					for i := 0; i < num; i++ {
						lk.Lock()
						gen++
						for j := range slots {
							slots[j] = gen
						}
						lk.Unlock()
					}
					return nil
				})
			}
			for r := 0; r < nReader; r++ {
				g.Go(func() error {
					last := 0
					for i := 0; i < num; i++ {
						lk.Lock()
						g0, first := gen, slots[0]
						for j := range slots {
							if slots[j] != first || first != g0 {
								lk.Unlock()
								return fmt.Errorf("torn read: gen=%d slots=%v", g0, slots)
							}
						}
						lk.Unlock()
						if g0 < last {
							return fmt.Errorf("generation went backwards: %d < %d", g0, last)
						}
						last = g0
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())
			require.Equal(t, nWriter*num, gen)
		})
	}
}

func TestHandOff(t *testing.T) {
	for name, f := range testLockers() {
		t.Run(name, func(t *testing.T) {
			lk := f()
			lk.Lock()

			var (
				wg       sync.WaitGroup
				acquired atomic.Bool
				value    int
				seen     int
			)
			wg.Add(1)
			go func() {
				defer wg.Done()
				lk.Lock()
				acquired.Store(true)
				seen = value
				lk.Unlock()
			}()

			time.Sleep(10 * time.Millisecond)
			require.False(t, acquired.Load())
			value = 42
			lk.Unlock()

			wg.Wait()
			require.True(t, acquired.Load())
			require.Equal(t, 42, seen)
		})
	}
}

func BenchmarkLocker(b *testing.B) {
	for _, v := range Variants() {
		f := v.Factory()
		b.Run(v.String(), func(b *testing.B) {
			lk := f()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					lk.Lock()
					lk.Unlock()
				}
			})
		})
	}
}

func BenchmarkLocker_Uncontended(b *testing.B) {
	for _, v := range Variants() {
		f := v.Factory()
		b.Run(v.String(), func(b *testing.B) {
			lk := f()
			for i := 0; i < b.N; i++ {
				lk.Lock()
				lk.Unlock()
			}
		})
	}
}
