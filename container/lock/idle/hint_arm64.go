package idle

// Native returns the spin hint of the build target: WFE/SEV on arm64.
func Native() Hint {
	return event{}
}

type event struct{}

// Wait parks the core until an event is signalled. The unlocking core's SEV
// and the kernel event stream both wake it, so a missed SEV costs at most
// one event-stream tick.
func (event) Wait() {
	wfe()
}

func (event) Wake() {
	sev()
}

func (event) String() string {
	return "wfe"
}

func wfe()

func sev()
