package bench

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tezrry/spinbench/container/lock"
	"github.com/tezrry/spinbench/link"
)

type State int32

const (
	Uninitialized   State = 0
	SharedLockReady State = 1
	WorkersRunning  State = 2
	Drained         State = 3
	TornDown        State = 4
)

var stateNames = [...]string{
	Uninitialized:   "Uninitialized",
	SharedLockReady: "SharedLockReady",
	WorkersRunning:  "WorkersRunning",
	Drained:         "Drained",
	TornDown:        "TornDown",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Trial is the context of one trial: the one shared lock, the shared
// critical-section state and the lifecycle that guards them. Workers get a
// pointer to it; nothing about a trial is global.
//
// The harness drives the transitions and is responsible for the barriers
// around them: every worker must be parked before Begin, and every worker
// must have returned from Work before Drain. A transition out of order is a
// memory-safety bug in the caller, so it panics.
type Trial struct {
	desc     Descriptor
	lock     lock.Locker
	workload Workload
	shared   Shared
	state    atomic.Int32
	aborted  atomic.Bool
}

// NewTrial constructs the shared lock with factory and leaves the trial in
// SharedLockReady.
func NewTrial(d Descriptor, factory lock.Factory, w Workload) *Trial {
	if w == nil {
		w = Touch
	}

	t := &Trial{desc: d, workload: w}
	t.lock = factory()
	if t.lock == nil {
		panic(fmt.Errorf("trial %s: lock factory returned nil", d.Name()))
	}
	t.transition(Uninitialized, SharedLockReady)
	return t
}

func (t *Trial) Descriptor() Descriptor {
	return t.desc
}

func (t *Trial) State() State {
	return State(t.state.Load())
}

// Begin opens the trial to workers.
func (t *Trial) Begin() {
	t.transition(SharedLockReady, WorkersRunning)
}

// Work is one worker's whole measured budget. It returns the wall time of
// the loop alone, read on the worker's own thread, so neither the start
// gate nor the done barrier is part of it.
func (t *Trial) Work() time.Duration {
	if t.State() != WorkersRunning {
		panic(fmt.Errorf("trial %s: worker started in state %s", t.desc.Name(), t.State()))
	}

	lk, w, sh := t.lock, t.workload, &t.shared
	n := t.desc.Iterations * t.desc.Repeat
	start := link.Nanotime()
	for i := 0; i < n; i++ {
		lk.Lock()
		w(sh)
		lk.Unlock()
	}
	return time.Duration(link.Nanotime() - start)
}

// Drain records that every worker has returned.
func (t *Trial) Drain() {
	t.transition(WorkersRunning, Drained)
}

// Teardown releases the shared lock and returns the final entry count.
func (t *Trial) Teardown() uint64 {
	t.transition(Drained, TornDown)
	t.lock = nil
	return t.shared.Entries()
}

// Abort tears down a trial whose workers never ran. Parked workers must
// check Aborted once released and return without touching the lock.
func (t *Trial) Abort() {
	t.aborted.Store(true)
	t.transition(SharedLockReady, TornDown)
	t.lock = nil
}

func (t *Trial) Aborted() bool {
	return t.aborted.Load()
}

func (t *Trial) transition(from, to State) {
	if !t.state.CompareAndSwap(int32(from), int32(to)) {
		panic(fmt.Errorf("trial %s: illegal transition %s -> %s in state %s",
			t.desc.Name(), from, to, t.State()))
	}
}
