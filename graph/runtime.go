package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/logging"
)

// TracerName is the instrumentation scope of run and node spans.
const TracerName = "ai-newsroom/graph"

// Step is one merged node invocation as observed by Stream consumers.
type Step struct {
	// Index is the 1-based invocation number within the run.
	Index int
	// Node is the node that produced Update.
	Node string
	// Update is the delta the node returned.
	Update core.Update
	// State is the state after the merge.
	State core.State
	// Duration is the node run time.
	Duration time.Duration
}

type runIDKey struct{}

// WithRunID attaches a run identifier to ctx. Runs started without one get a
// fresh identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run identifier stored in ctx.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// Run executes the graph from its entry point until a node routes to End.
//
// budget is the maximum number of node invocations. When a further
// invocation would be needed the run stops with a *core.StepBudgetError and
// the last state is returned together with the error. The returned state is
// always the latest merged state, also when a node or callback failed.
func (g *Graph) Run(ctx context.Context, initial core.State, budget int) (core.State, error) {
	return g.walk(ctx, initial, budget, nil)
}

// Stream executes the graph like Run and delivers every merged step in order.
//
// The step channel is closed when the run ends. The error channel then
// carries at most one terminal error (budget exhaustion, node or callback
// failure, configuration error, cancellation) and is closed as well.
func (g *Graph) Stream(ctx context.Context, initial core.State, budget int) (<-chan Step, <-chan error) {
	steps := make(chan Step, g.opts.StreamBuffer)
	errCh := make(chan error, 1)

	go func() {
		defer close(steps)
		defer close(errCh)

		_, err := g.walk(ctx, initial, budget, func(s Step) error {
			select {
			case steps <- s:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errCh <- err
		}
	}()

	return steps, errCh
}

// Collect drains the channels returned by Stream. It returns every step
// received and the terminal error, if any.
func Collect(ctx context.Context, steps <-chan Step, errs <-chan error) ([]Step, error) {
	var out []Step
	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case s, ok := <-steps:
			if !ok {
				return out, <-errs
			}
			out = append(out, s)
		}
	}
}

func (g *Graph) walk(ctx context.Context, initial core.State, budget int, emit func(Step) error) (core.State, error) {
	runID, ok := RunIDFromContext(ctx)
	if !ok {
		runID = core.NewID()
		ctx = WithRunID(ctx, runID)
	}

	ctx, span := g.tracer.Start(ctx, "graph.Run",
		trace.WithAttributes(
			attribute.String("graph.run_id", runID),
			attribute.String("graph.entry", g.entry),
			attribute.Int("graph.step_budget", budget),
		),
	)
	defer span.End()

	logger := logging.With(g.logger, "run_id", runID)
	start := time.Now()
	state := initial

	if budget < 1 {
		return g.finish(ctx, span, logger, runID, state, 0, start, fmt.Errorf("%w: got %d", ErrInvalidBudget, budget))
	}

	counter := core.NewStepBudget(budget)
	current := g.entry

	logger.Info("run started", "entry", current, "step_budget", budget)

	for {
		if err := ctx.Err(); err != nil {
			return g.finish(ctx, span, logger, runID, state, counter.Count(), start, err)
		}
		if err := counter.Increment(); err != nil {
			logger.Warn("step budget exhausted", "budget", budget, "next_node", current)
			return g.finish(ctx, span, logger, runID, state, counter.Count(), start, err)
		}

		step := counter.Count()
		node := g.nodes[current]

		if err := g.opts.Callbacks.ExecuteCallbacks(ctx, CallbackBeforeNode, &CallbackContext{
			RunID: runID, Node: current, Step: step, State: state,
		}); err != nil {
			return g.finish(ctx, span, logger, runID, state, step, start, fmt.Errorf("before_node callback: %w", err))
		}

		update, dur, err := g.invoke(ctx, node, state, step)
		if err == nil {
			state = state.Apply(update)
		}

		if cbErr := g.opts.Callbacks.ExecuteCallbacks(ctx, CallbackAfterNode, &CallbackContext{
			RunID: runID, Node: current, Step: step, State: state, Update: update, Duration: dur, Err: err,
		}); cbErr != nil && err == nil {
			err = fmt.Errorf("after_node callback: %w", cbErr)
		}
		if err != nil {
			return g.finish(ctx, span, logger, runID, state, step, start, err)
		}

		logger.Debug("node completed",
			"node", current,
			"step", step,
			"messages", len(update.Messages),
			"directive", state.Directive.String(),
			"duration", dur,
		)

		if emit != nil {
			if err := emit(Step{Index: step, Node: current, Update: update, State: state, Duration: dur}); err != nil {
				return g.finish(ctx, span, logger, runID, state, step, start, err)
			}
		}

		next, err := g.Successor(current, state)
		if err != nil {
			return g.finish(ctx, span, logger, runID, state, step, start, err)
		}
		if next == End {
			return g.finish(ctx, span, logger, runID, state, step, start, nil)
		}
		current = next
	}
}

func (g *Graph) invoke(ctx context.Context, node Node, state core.State, step int) (core.Update, time.Duration, error) {
	ctx, span := g.tracer.Start(ctx, "graph.Node",
		trace.WithAttributes(
			attribute.String("graph.node", node.Name()),
			attribute.Int("graph.step", step),
		),
	)
	defer span.End()

	start := time.Now()
	update, err := node.Run(ctx, state)
	dur := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return core.Update{}, dur, &NodeError{Node: node.Name(), Step: step, Err: err}
	}

	span.SetAttributes(attribute.Int("graph.messages_appended", len(update.Messages)))
	if update.Directive != nil {
		span.SetAttributes(attribute.String("graph.directive", update.Directive.String()))
	}
	return update, dur, nil
}

func (g *Graph) finish(
	ctx context.Context,
	span trace.Span,
	logger logging.Logger,
	runID string,
	state core.State,
	steps int,
	start time.Time,
	err error,
) (core.State, error) {
	dur := time.Since(start)

	span.SetAttributes(attribute.Int("graph.steps", steps))
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, core.ErrStepBudgetExceeded):
		span.SetStatus(codes.Error, "step budget exceeded")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	logging.LogRun(logger, runID, steps, dur, err)

	if cbErr := g.opts.Callbacks.ExecuteCallbacks(context.WithoutCancel(ctx), CallbackRunEnd, &CallbackContext{
		RunID: runID, Step: steps, State: state, Duration: dur, Err: err,
	}); cbErr != nil {
		logger.Warn("on_run_end callback failed", "error", cbErr.Error())
	}

	return state, err
}
