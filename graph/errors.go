package graph

import (
	"errors"
	"fmt"

	"github.com/mrinaald/ai-newsroom/core"
)

var (
	// ErrInvalidGraph wraps every configuration problem reported by Compile.
	ErrInvalidGraph = errors.New("invalid graph")
	// ErrUnknownNode is returned when an edge or the entry point names a node
	// that was never added.
	ErrUnknownNode = errors.New("unknown node")
	// ErrDuplicateNode is returned when two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrNoEntryPoint is returned when no entry point was set.
	ErrNoEntryPoint = errors.New("no entry point")
	// ErrMissingEdge is returned when a node has no outgoing edge.
	ErrMissingEdge = errors.New("missing outgoing edge")
	// ErrDuplicateEdge is returned when a node has more than one outgoing edge definition.
	ErrDuplicateEdge = errors.New("duplicate outgoing edge")
	// ErrUnmappedDirective is matched by UnmappedDirectiveError.
	ErrUnmappedDirective = errors.New("unmapped directive")
	// ErrInvalidBudget is returned for a step budget below one.
	ErrInvalidBudget = errors.New("step budget must be at least 1")
)

// UnmappedDirectiveError reports a conditional node whose directive has no
// route. It is a configuration error and always fatal.
type UnmappedDirectiveError struct {
	Node      string
	Directive core.Directive
}

func (e *UnmappedDirectiveError) Error() string {
	return fmt.Sprintf("node %s: no route for directive %q", e.Node, e.Directive)
}

// Is allows errors.Is(err, ErrUnmappedDirective).
func (e *UnmappedDirectiveError) Is(target error) bool { return target == ErrUnmappedDirective }

// NodeError wraps a failure returned by a node.
type NodeError struct {
	Node string
	Step int
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s failed at step %d: %v", e.Node, e.Step, e.Err)
}

// Unwrap returns the node's error.
func (e *NodeError) Unwrap() error { return e.Err }
