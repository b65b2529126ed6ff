package lock

import (
	"sync/atomic"
	"unsafe"
)

const CacheLineSize = 128

// Flag is the single word every spin lock is built on. It owns a whole cache
// line so neighbouring allocations never share it with the lock.
type Flag struct {
	v atomic.Bool
	_ [CacheLineSize - unsafe.Sizeof(atomic.Bool{})]byte
}

// Exchange marks the flag locked and reports whether it already was.
// false means the caller now owns the lock.
func (f *Flag) Exchange() bool {
	return f.v.Swap(true)
}

// Locked polls the flag without writing it.
func (f *Flag) Locked() bool {
	return f.v.Load()
}

// Clear publishes the unlocked state.
func (f *Flag) Clear() {
	f.v.Store(false)
}
