package lock

import "github.com/tezrry/spinbench/container/lock/idle"

// Pause polls a busy flag with a CPU spin hint between loads and never
// leaves user space. Unlock runs the hint's wake side after the store.
type Pause struct {
	flag Flag
	hint idle.Hint
}

// NewPause creates a Pause lock. A nil hint means idle.Native().
func NewPause(h idle.Hint) *Pause {
	if h == nil {
		h = idle.Native()
	}
	return &Pause{hint: h}
}

func (lk *Pause) Lock() {
	for lk.flag.Exchange() {
		h := lk.idle()
		for {
			h.Wait()
			if !lk.flag.Locked() {
				break
			}
		}
	}
}

func (lk *Pause) Unlock() {
	lk.flag.Clear()
	lk.idle().Wake()
}

func (lk *Pause) Locked() bool {
	return lk.flag.Locked()
}

func (lk *Pause) idle() idle.Hint {
	if lk.hint == nil {
		return idle.Native()
	}
	return lk.hint
}
