//go:build !linux && !darwin

package clock

import "time"

const CPUSupported = false

// ProcessCPU is always zero where no process CPU clock is wired up.
func ProcessCPU() time.Duration {
	return 0
}
