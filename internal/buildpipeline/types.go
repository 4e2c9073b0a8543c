package buildpipeline

import "time"

// Stage is a phase the progress view and --timings know about.
type Stage string

const (
	StageParse Stage = "parse"
	// StageCheck covers declaration, resolution and finalization; files stay
	// in it until the registry settles.
	StageCheck Stage = "check"
	StageEmit  Stage = "emit"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one file, or for the whole compilation when
// File is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds the wall time of the check and emit stages.
type Timings map[Stage]time.Duration

// Set records dur for stage; a nil receiver is ignored.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if *t == nil {
		*t = make(Timings, 2)
	}
	(*t)[stage] = dur
}

func (t Timings) Has(stage Stage) bool {
	_, ok := t[stage]
	return ok
}

func (t Timings) Duration(stage Stage) time.Duration { return t[stage] }
