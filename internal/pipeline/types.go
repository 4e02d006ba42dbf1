package pipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	StageAssemble Stage = "assemble"
	StageMerge    Stage = "merge"
	StageDedup    Stage = "dedup"
	StageEmit     Stage = "emit"
)

// Stages lists the phases in execution order.
var Stages = []Stage{StageAssemble, StageMerge, StageDedup, StageEmit}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusSkipped marks a procedure left out of the output.
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Event reports progress for a procedure (or for the whole run when
// Procedure is empty).
type Event struct {
	Procedure string
	Stage     Stage
	Status    Status
	Err       error
	Elapsed   time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] = dur
}

func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the total over stages, or over every stage when none are given.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if len(stages) == 0 {
		stages = Stages
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
