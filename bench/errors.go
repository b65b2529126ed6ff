package bench

import "errors"

var (
	ErrInvalidThreads    = errors.New("threads MUST be greater than 0")
	ErrInvalidIterations = errors.New("iterations MUST NOT be negative")
	ErrInvalidRepeat     = errors.New("repeat MUST be greater than 0")
	ErrUnknownVariant    = errors.New("unknown lock variant")
	ErrUnknownMode       = errors.New("unknown timing mode")
	ErrPoolExhausted     = errors.New("worker pool too small for trial")
	// ErrMutualExclusion means the critical-section counter disagrees with
	// the number of lock acquisitions: two workers were inside at once.
	ErrMutualExclusion = errors.New("critical section entered concurrently")
)
