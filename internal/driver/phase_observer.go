package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary. File is set for per-file phases
// ("parse", "check"); Err is set on a failed PhaseEnd.
type PhaseEvent struct {
	Name    string
	File    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events emitted during Compile. It may be
// called from several goroutines at once.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) emit(ev PhaseEvent) {
	if o != nil {
		o(ev)
	}
}

// phase reports a whole-compilation phase to the observer and the timer.
func (c *compilation) phase(name string) func(note string) {
	idx := c.timer.Begin(name)
	c.opts.Observer.emit(PhaseEvent{Name: name, Status: PhaseStart})
	started := time.Now()
	return func(note string) {
		c.timer.End(idx, note)
		c.opts.Observer.emit(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(started)})
	}
}
