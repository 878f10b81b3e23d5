// Package graph implements the execution runtime of the newsroom: a small,
// strictly sequential state machine over named nodes.
//
// # Model
//
// A graph is a set of nodes plus a transition table. Each node has exactly
// one outgoing edge definition:
//
//   - an unconditional edge (AddEdge): after the node runs, go to a fixed target
//   - conditional edges (AddConditionalEdges): after the node runs, look up the
//     just-written routing directive in a map of directive to target
//
// The End sentinel is a valid target and terminates the run.
//
// # Execution
//
// Run walks the graph from the entry point:
//
//	state := initial
//	node  := entry
//	loop:
//	    reserve one step from the budget (stop with StepBudgetError when spent)
//	    update := node.Run(ctx, state)
//	    state   = state.Apply(update)
//	    node    = successor(node, state.Directive)
//	    if node == End: return state
//
// Nodes never see each other's in-flight changes and never mutate State; the
// merge in the loop is the only writer. A budget of N allows exactly N node
// invocations, so a policy that keeps routing back to itself terminates after
// N steps with the last state still returned to the caller.
//
// # Errors
//
// Configuration problems are fatal and reported by Compile (ErrInvalidGraph).
// A directive with no route at runtime is fatal as well
// (UnmappedDirectiveError). Node errors abort the run; the runtime never
// retries a node, retry policy belongs to the node itself.
//
// # Observability
//
// Every run and node invocation is wrapped in an OpenTelemetry span, logged
// through logging.Logger and reported to registered callbacks (before_node,
// after_node, on_run_end).
package graph
