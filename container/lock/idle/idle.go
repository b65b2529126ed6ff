// Package idle holds the policies a spinning waiter runs between failed
// acquisition attempts.
package idle

import "runtime"

// Hint is a CPU-level spin hint. Wait is executed on every poll of a busy
// lock; Wake is executed by the releasing side after the unlock store.
type Hint interface {
	Wait()
	Wake()
}

// Noop does nothing on either side. Lock loops stay identical, which makes
// it the hint of choice for unit tests on any host.
var Noop Hint = noop{}

type noop struct{}

func (noop) Wait() {}
func (noop) Wake() {}

// Yielder gives up the rest of the caller's time slice.
type Yielder func()

// Gosched yields to the Go scheduler.
func Gosched() {
	runtime.Gosched()
}
