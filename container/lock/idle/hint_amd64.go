package idle

import "github.com/tezrry/spinbench/link"

// Native returns the spin hint of the build target: PAUSE on amd64.
func Native() Hint {
	return pause{}
}

type pause struct{}

func (pause) Wait() {
	link.ProcYield(1)
}

// Wake is empty: PAUSE has no release-side counterpart.
func (pause) Wake() {}

func (pause) String() string {
	return "pause"
}
