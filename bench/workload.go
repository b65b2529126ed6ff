package bench

import (
	"unsafe"

	"github.com/tezrry/spinbench/container/lock"
)

// Shared is the state a critical section may touch. It lives in the trial,
// on its own cache line, and is only ever written under the trial's lock.
type Shared struct {
	entries uint64
	_       [lock.CacheLineSize - unsafe.Sizeof(uint64(0))]byte
}

// Entries returns the number of Touch calls so far. Only read it when no
// worker can be inside the critical section.
func (s *Shared) Entries() uint64 {
	return s.entries
}

// Workload runs while the lock is held. It must not block, allocate or take
// another lock.
type Workload func(s *Shared)

// Touch bumps the entry counter. The store lands in heap memory that is read
// back at teardown, so the compiler can neither drop it nor hoist it out of
// the lock/unlock pair, and the final count doubles as a lost-update check.
func Touch(s *Shared) {
	s.entries++
}
