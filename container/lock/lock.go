// Package lock provides interchangeable mutual-exclusion primitives that
// share one exchange-based acquisition algorithm and differ only in what a
// waiter does between failed attempts.
package lock

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tezrry/spinbench/container/lock/idle"
)

// Locker is the capability every variant exposes.
type Locker = sync.Locker

type Variant uint8

const (
	NoBackoff        Variant = 0
	CooperativeYield Variant = 1
	HardwarePause    Variant = 2
	Baseline         Variant = 3
)

var variantNames = [...]string{
	NoBackoff:        "spin",
	CooperativeYield: "yield",
	HardwarePause:    "pause",
	Baseline:         "mutex",
}

var variantAliases = map[string]Variant{
	"spin":             NoBackoff,
	"nobackoff":        NoBackoff,
	"noyield":          NoBackoff,
	"yield":            CooperativeYield,
	"cooperativeyield": CooperativeYield,
	"pause":            HardwarePause,
	"hardwarepause":    HardwarePause,
	"wfe":              HardwarePause,
	"mutex":            Baseline,
	"baseline":         Baseline,
	"std::mutex":       Baseline,
}

// Variants returns every variant in registration order.
func Variants() []Variant {
	return []Variant{NoBackoff, CooperativeYield, HardwarePause, Baseline}
}

func (v Variant) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

func (v Variant) Valid() bool {
	return int(v) < len(variantNames)
}

// ParseVariant accepts the short names and a few long-form aliases,
// case-insensitively.
func ParseVariant(s string) (Variant, error) {
	v, ok := variantAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown lock variant %q", s)
	}
	return v, nil
}

// Factory creates a fresh, unlocked Locker.
type Factory func() Locker

type Option func(o *options)

type options struct {
	hint  idle.Hint
	yield idle.Yielder
}

// WithHint sets the spin hint used by HardwarePause locks.
func WithHint(h idle.Hint) Option {
	return func(o *options) {
		o.hint = h
	}
}

// WithYielder sets the yield used by CooperativeYield locks.
func WithYielder(y idle.Yielder) Option {
	return func(o *options) {
		o.yield = y
	}
}

// Factory returns a constructor for v. It panics on an invalid variant.
func (v Variant) Factory(opts ...Option) Factory {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch v {
	case NoBackoff:
		return func() Locker { return NewSpin() }
	case CooperativeYield:
		return func() Locker { return NewYield(o.yield) }
	case HardwarePause:
		return func() Locker { return NewPause(o.hint) }
	case Baseline:
		return func() Locker { return NewMutex() }
	default:
		panic(fmt.Errorf("no factory for lock variant %d", uint8(v)))
	}
}
