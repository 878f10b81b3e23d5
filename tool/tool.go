// Package tool implements the capability subsystem workers use to reach the
// outside world (web search and similar lookups). A tool takes a plain text
// input and returns opaque text; callers never parse the result, they only
// fold it into a model instruction.
package tool

import (
	"context"
	"fmt"
)

// Error codes carried by ToolError.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeExecution   = "EXECUTION_ERROR"
	CodeRateLimited = "RATE_LIMITED"
)

// Tool defines the interface for capabilities a worker can call.
//
// Implementations should:
//   - Provide a short, stable name used in logs and metrics
//   - Return opaque text; structure is the model's concern, not the caller's
//   - Honour ctx cancellation on any network call
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Call executes the tool with the given input.
	Call(ctx context.Context, input string) (string, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Err     error  `json:"-"`                 // Underlying cause, if any
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ToolError) Unwrap() error { return e.Err }

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
