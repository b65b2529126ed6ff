// Package clock reads the two time bases a trial can be judged by: the
// monotonic wall clock and the CPU time consumed by the whole process.
package clock

import (
	"fmt"
	"strings"
	"time"

	"github.com/tezrry/spinbench/link"
)

type Mode uint8

const (
	// Wall measures elapsed real time across all concurrently scheduled
	// workers. Contention is a wall-clock property, so this is the default.
	Wall Mode = 0
	// CPU measures process CPU time. Spinning waiters inflate it; a parked
	// waiter does not.
	CPU Mode = 1
)

func (m Mode) String() string {
	switch m {
	case Wall:
		return "real_time"
	case CPU:
		return "cpu_time"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

func (m Mode) Valid() bool {
	return m == Wall || m == CPU
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wall", "real", "real_time":
		return Wall, nil
	case "cpu", "cpu_time":
		return CPU, nil
	default:
		return Wall, fmt.Errorf("unknown timing mode %q", s)
	}
}

// Stopwatch captures both clocks at Start; Stop returns both deltas.
type Stopwatch struct {
	wall int64
	cpu  time.Duration
}

func Start() Stopwatch {
	cpu := ProcessCPU()
	return Stopwatch{wall: link.Nanotime(), cpu: cpu}
}

func (s Stopwatch) Stop() (wall, cpu time.Duration) {
	now := link.Nanotime()
	cpu = ProcessCPU() - s.cpu
	return time.Duration(now - s.wall), cpu
}
