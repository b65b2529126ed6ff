package lock

// Spin retries the exchange in a tight loop. No back-off at all.
type Spin struct {
	flag Flag
}

func NewSpin() *Spin {
	return new(Spin)
}

func (lk *Spin) Lock() {
	for lk.flag.Exchange() {
	}
}

func (lk *Spin) Unlock() {
	lk.flag.Clear()
}

func (lk *Spin) Locked() bool {
	return lk.flag.Locked()
}
