// Package metrics defines the publish-pipeline metrics surface.
package metrics

import "time"

// Outcome labels recorded for publish attempts.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeFailure       Outcome = "failure"
	OutcomeNothingToPost Outcome = "nothing_to_post"
)

// Recorder abstracts metric emission so the poster stays testable and the
// one-shot command can run without a registry.
type Recorder interface {
	// IncPostOutcome counts a completed publish attempt by outcome.
	IncPostOutcome(outcome Outcome)
	// ObservePostDuration records how long a publish attempt took.
	ObservePostDuration(d time.Duration)
	// SetPendingImages records how many images are still unposted.
	SetPendingImages(n int)
	// SetLastPostedIndex records the persisted posting-state index.
	SetLastPostedIndex(index int)
}

// NoopRecorder discards all observations.
type NoopRecorder struct{}

func (NoopRecorder) IncPostOutcome(Outcome)            {}
func (NoopRecorder) ObservePostDuration(time.Duration) {}
func (NoopRecorder) SetPendingImages(int)              {}
func (NoopRecorder) SetLastPostedIndex(int)            {}
