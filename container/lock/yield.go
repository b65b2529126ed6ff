package lock

import "github.com/tezrry/spinbench/container/lock/idle"

// Yield gives its time slice away after every failed exchange and only
// retries the exchange once a plain load sees the flag cleared.
type Yield struct {
	flag  Flag
	yield idle.Yielder
}

// NewYield creates a Yield lock. A nil yielder means idle.Gosched.
func NewYield(y idle.Yielder) *Yield {
	if y == nil {
		y = idle.Gosched
	}
	return &Yield{yield: y}
}

func (lk *Yield) Lock() {
	for lk.flag.Exchange() {
		y := lk.yield
		if y == nil {
			y = idle.Gosched
		}
		for {
			y()
			if !lk.flag.Locked() {
				break
			}
		}
	}
}

func (lk *Yield) Unlock() {
	lk.flag.Clear()
}

func (lk *Yield) Locked() bool {
	return lk.flag.Locked()
}
