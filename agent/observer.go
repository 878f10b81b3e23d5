package agent

import "github.com/mrinaald/ai-newsroom/core"

// AttemptOutcome classifies one worker generation attempt.
type AttemptOutcome string

// Attempt outcomes reported to an Observer.
const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptEmpty   AttemptOutcome = "empty"
	AttemptError   AttemptOutcome = "error"
	AttemptTimeout AttemptOutcome = "timeout"
	// AttemptExhausted is reported once when every attempt failed.
	AttemptExhausted AttemptOutcome = "exhausted"
)

// Observer receives agent level signals, typically to feed metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveAttempt(worker string, outcome AttemptOutcome)
	ObserveDecision(strategy Strategy, directive core.Directive)
}

// NoOpObserver ignores everything.
type NoOpObserver struct{}

// ObserveAttempt implements Observer.
func (NoOpObserver) ObserveAttempt(string, AttemptOutcome) {}

// ObserveDecision implements Observer.
func (NoOpObserver) ObserveDecision(Strategy, core.Directive) {}
