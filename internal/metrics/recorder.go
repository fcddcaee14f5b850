// Package metrics defines the observability hooks of the conversion service.
package metrics

import "time"

// Outcome labels a finished conversion or job.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomePartial Outcome = "partial"
)

// Recorder receives service measurements. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveConversion(d time.Duration, outcome Outcome)
	IncJobOutcome(outcome Outcome)
	SetQueueDepth(n int)
	IncPublishRetry()
}

// NoopRecorder is used when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) ObserveConversion(time.Duration, Outcome) {}
func (NoopRecorder) IncJobOutcome(Outcome)                    {}
func (NoopRecorder) SetQueueDepth(int)                        {}
func (NoopRecorder) IncPublishRetry()                         {}
