package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrStepBudgetExceeded is matched by every StepBudgetError.
var ErrStepBudgetExceeded = errors.New("step budget exceeded")

// StepBudgetError reports that a run was stopped because it would have
// needed more node invocations than allowed.
type StepBudgetError struct {
	Budget int
	Steps  int
}

func (e *StepBudgetError) Error() string {
	return fmt.Sprintf("step budget exceeded: %d node invocations allowed, %d executed", e.Budget, e.Steps)
}

// Is allows errors.Is(err, ErrStepBudgetExceeded).
func (e *StepBudgetError) Is(target error) bool { return target == ErrStepBudgetExceeded }

// StepBudget enforces a maximum number of node invocations per run.
type StepBudget struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewStepBudget creates a budget allowing max invocations.
// If max == 0, unlimited invocations are allowed.
func NewStepBudget(max int) *StepBudget {
	return &StepBudget{max: max}
}

// Increment reserves one invocation. It returns a *StepBudgetError, without
// consuming the slot, when the budget is already spent.
func (b *StepBudget) Increment() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.count >= b.max {
		return &StepBudgetError{Budget: b.max, Steps: b.count}
	}

	b.count++

	return nil
}

// Count returns the number of invocations reserved so far.
func (b *StepBudget) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.count
}

// Remaining returns how many invocations are left before hitting the limit.
func (b *StepBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max == 0 {
		return -1 // unlimited
	}

	return b.max - b.count
}

// Max returns the configured limit.
func (b *StepBudget) Max() int { return b.max }
