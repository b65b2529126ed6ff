package lock

import "sync"

// Mutex is the control group: sync.Mutex behind the same Locker contract.
// Waiters may park in the runtime semaphore instead of spinning.
type Mutex struct {
	mu sync.Mutex
}

func NewMutex() *Mutex {
	return new(Mutex)
}

func (lk *Mutex) Lock() {
	lk.mu.Lock()
}

func (lk *Mutex) Unlock() {
	lk.mu.Unlock()
}
