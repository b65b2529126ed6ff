package link

import _ "unsafe"

// ProcYield executes the architecture's spin-loop hint `cycles` times
// (PAUSE on amd64, YIELD on arm64) without giving up the P. cycles MUST be
// greater than 0: the runtime loop decrements before testing.
//
//go:linkname ProcYield runtime.procyield
func ProcYield(cycles uint32)

// Nanotime reads the runtime's monotonic clock.
//
//go:linkname Nanotime runtime.nanotime
func Nanotime() int64
