package tool

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mrinaald/ai-newsroom/logging"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a Tool.
//
// Responsibilities:
//   - Rejects blank input before execution
//   - Normalizes error handling so callers receive *ToolError with consistent codes:
//     VALIDATION_ERROR  -> blank input
//     EXECUTION_ERROR   -> underlying function returned an error (non-ToolError)
//     (custom codes preserved if the function returns *ToolError directly)
//   - Logs every call with its duration
//
// Concurrency:
//
//	A FunctionTool has no internal mutable state after construction and is safe for
//	concurrent use by multiple goroutines.
type FunctionTool struct {
	name        string
	description string
	fn          func(ctx context.Context, input string) (string, error)
	logger      logging.Logger
}

// FunctionToolOptions configure a FunctionTool.
type FunctionToolOptions struct {
	Logger logging.Logger
}

// NewFunctionTool constructs a FunctionTool.
//
// Example:
//
//	echo := NewFunctionTool(
//	  "echo",
//	  "Repeat the query back",
//	  func(ctx context.Context, input string) (string, error) {
//	    return input, nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	fn func(ctx context.Context, input string) (string, error),
	optFns ...func(o *FunctionToolOptions),
) *FunctionTool {
	opts := FunctionToolOptions{Logger: logging.NoOpLogger{}}
	for _, f := range optFns {
		f(&opts)
	}
	return &FunctionTool{
		name:        name,
		description: description,
		fn:          fn,
		logger:      logging.OrNoOp(opts.Logger),
	}
}

// Name returns the tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description.
func (t *FunctionTool) Description() string { return t.description }

// Call validates the input then invokes the underlying function.
//
// Error Semantics:
//
//	*ToolError (returned directly)  -> forwarded unchanged
//	blank input                     -> *ToolError{Code: "VALIDATION_ERROR"}
//	other error                     -> *ToolError{Code: "EXECUTION_ERROR"}
func (t *FunctionTool) Call(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", NewToolError(t.name, "input must not be empty", CodeValidation)
	}

	start := time.Now()
	result, err := t.fn(ctx, input)
	logging.LogToolCall(t.logger, t.name, time.Since(start), err)

	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return "", toolErr
		}
		return "", &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
			Err:     err,
		}
	}

	return result, nil
}
