package graph

import (
	"context"
	"time"

	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/logging"
)

// CallbackType defines the specific lifecycle points where callbacks can be executed.
//
// Callbacks provide a flexible mechanism for hooking into the runtime's
// execution loop without modifying core logic. Each type represents a
// specific point in the run lifecycle where custom logic can be injected.
//
// Callbacks are executed synchronously and can influence execution flow
// by returning errors that terminate the run.
type CallbackType string

const (
	// CallbackBeforeNode is triggered after a step has been reserved and
	// before the node runs.
	CallbackBeforeNode CallbackType = "before_node"

	// CallbackAfterNode is triggered after the node's update has been merged.
	// Err is set when the node failed; the update is then empty.
	CallbackAfterNode CallbackType = "after_node"

	// CallbackRunEnd is triggered once per run, whatever the outcome.
	// Errors returned by on_run_end callbacks are logged, not propagated.
	CallbackRunEnd CallbackType = "on_run_end"
)

// CallbackContext provides context information for callback execution.
type CallbackContext struct {
	// RunID correlates every callback of one run.
	RunID string

	// Node is the node being executed. Empty for on_run_end.
	Node string

	// Step is the 1-based invocation index within the run. For on_run_end it
	// holds the number of invocations performed.
	Step int

	// State is the state before the node ran (before_node) or after the
	// merge (after_node, on_run_end).
	State core.State

	// Update is the node's delta. Only set for after_node.
	Update core.Update

	// Duration is the node run time (after_node) or the run time (on_run_end).
	Duration time.Duration

	// Err carries the node error (after_node) or the terminal run error (on_run_end).
	Err error

	// CallbackType indicates which callback type triggered this execution.
	CallbackType CallbackType
}

// Callback defines the interface for execution lifecycle hooks.
//
// Implementations should be fast (callbacks run synchronously and block the
// run) and safe for concurrent use when a graph serves several runs.
// Callbacks that return errors terminate the run.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	visits := NewFunctionCallback(
//	    CallbackBeforeNode,
//	    func(ctx context.Context, cc *CallbackContext) error {
//	        log.Printf("entering %s", cc.Node)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager holds callbacks per type and runs them in registration order.
//
// Registration is not synchronized; register everything before the first
// run. Execution is safe for concurrent use afterwards.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new callback manager instance.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback to the manager for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks executes all registered callbacks for the specified type.
// Execution stops at the first error, which is returned.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	callbacks, exists := cm.callbacks[callbackType]
	if !exists {
		return nil
	}

	callbackCtx.CallbackType = callbackType
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback writes one structured record per lifecycle event.
type LoggingCallback struct {
	callbackType CallbackType
	logger       logging.Logger
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger logging.Logger) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logging.OrNoOp(logger),
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the lifecycle event.
func (c *LoggingCallback) Execute(_ context.Context, cc *CallbackContext) error {
	args := []any{"callback", string(c.callbackType), "run_id", cc.RunID, "step", cc.Step}
	if cc.Node != "" {
		args = append(args, "node", cc.Node)
	}
	if cc.Duration > 0 {
		args = append(args, "duration", cc.Duration)
	}
	if c.callbackType == CallbackAfterNode {
		args = append(args, "messages", len(cc.Update.Messages), "directive", cc.State.Directive.String())
	}
	if cc.Err != nil {
		c.logger.Warn("graph lifecycle", append(args, "error", cc.Err.Error())...)
		return nil
	}
	c.logger.Debug("graph lifecycle", args...)
	return nil
}
