//go:build !linux

package idle

import "runtime"

// OSYield falls back to the Go scheduler where sched_yield is not exposed.
func OSYield() {
	runtime.Gosched()
}
