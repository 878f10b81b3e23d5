package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/model"
)

// RetryPolicy bounds a worker's generation attempts.
type RetryPolicy struct {
	// MaxAttempts is the total number of generation calls per run.
	MaxAttempts int
	// Pause is the fixed wait between two attempts.
	Pause time.Duration
}

// DefaultRetryPolicy returns three attempts with a one second pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Pause: time.Second}
}

// WorkerOptions configure a Worker.
type WorkerOptions struct {
	Instruction Instruction
	Retry       RetryPolicy
	// CallTimeout bounds a single generation call. Zero disables it.
	CallTimeout time.Duration
	// Nudge is added as a transient user message after an empty answer.
	Nudge string
	// FailureText is the content appended after the last failed attempt.
	FailureText string
	Logger      logging.Logger
	Observer    Observer
	// Sleep waits between attempts. Defaults to a context aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Worker wraps a generator as a graph node that appends exactly one message
// per run, tagged with the worker's name.
type Worker struct {
	name      string
	generator model.Generator
	opts      WorkerOptions
	logger    logging.Logger
	observer  Observer
}

// NewWorker creates a worker node.
func NewWorker(name string, generator model.Generator, optFns ...func(o *WorkerOptions)) *Worker {
	opts := WorkerOptions{
		Retry:       DefaultRetryPolicy(),
		Nudge:       DefaultNudge,
		FailureText: DefaultFailureText,
		Logger:      logging.NoOpLogger{},
		Observer:    NoOpObserver{},
		Sleep:       sleepContext,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry.MaxAttempts = 1
	}
	if opts.Observer == nil {
		opts.Observer = NoOpObserver{}
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	return &Worker{
		name:      name,
		generator: generator,
		opts:      opts,
		logger:    logging.With(opts.Logger, "component", "worker", "worker", name),
		observer:  opts.Observer,
	}
}

// Name implements graph.Node.
func (w *Worker) Name() string { return w.name }

// Sender returns the sender tag of the worker's messages.
func (w *Worker) Sender() core.Sender { return core.Sender(w.name) }

// Run implements graph.Node.
//
// Each attempt resolves the worker's instruction and sends it with a local
// copy of the log. A non-blank answer ends the run with one message holding
// the answer as returned. A blank answer adds a nudge to the local copy only;
// instruction and provider faults are logged. Attempts are separated by the
// retry pause. When all attempts fail the failure text is appended instead.
// Only cancellation of ctx itself is returned as an error.
func (w *Worker) Run(ctx context.Context, state core.State) (core.Update, error) {
	local := state.Log.Messages()
	attempts := w.opts.Retry.MaxAttempts

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return core.Update{}, err
		}

		text, err := w.attempt(ctx, state, local)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return core.Update{}, ctx.Err()
			}
			outcome := AttemptError
			if errors.Is(err, context.DeadlineExceeded) {
				outcome = AttemptTimeout
			}
			w.observer.ObserveAttempt(w.name, outcome)
			w.logger.Warn("Generation failed", "attempt", attempt, "max_attempts", attempts, "error", err.Error())
		case strings.TrimSpace(text) == "":
			w.observer.ObserveAttempt(w.name, AttemptEmpty)
			w.logger.Warn("Empty answer, nudging", "attempt", attempt, "max_attempts", attempts)
			local = append(local, core.NewUserMessage(w.opts.Nudge))
		default:
			w.observer.ObserveAttempt(w.name, AttemptSuccess)
			w.logger.Info("Content generated", "attempt", attempt, "chars", len(text))
			return core.Say(core.NewMessage(w.Sender(), text)), nil
		}

		if attempt < attempts {
			if err := w.opts.Sleep(ctx, w.opts.Retry.Pause); err != nil {
				return core.Update{}, err
			}
		}
	}

	w.observer.ObserveAttempt(w.name, AttemptExhausted)
	w.logger.Error("No content after all attempts", "max_attempts", attempts)
	return core.Say(core.NewMessage(w.Sender(), w.opts.FailureText)), nil
}

func (w *Worker) attempt(ctx context.Context, state core.State, msgs []core.Message) (string, error) {
	instruction, err := w.opts.Instruction.Resolve(state)
	if err != nil {
		return "", fmt.Errorf("resolve %s instruction: %w", w.name, err)
	}
	return w.generate(ctx, instruction, msgs)
}

func (w *Worker) generate(ctx context.Context, instruction string, msgs []core.Message) (string, error) {
	if w.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.CallTimeout)
		defer cancel()
	}
	return w.generator.Generate(ctx, model.Request{Instruction: instruction, Messages: msgs})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
