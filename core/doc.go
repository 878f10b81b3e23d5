// Package core provides the foundational domain types shared by every part of
// the newsroom. It defines:
//
//   - Messages (immutable, sender-tagged conversation records)
//   - Log (the append-only conversation history)
//   - Directive (the single-slot routing value written by the supervisor)
//   - State and Update (the shared view handed to nodes and the deltas they return)
//   - StepBudget (the per-run bound on node invocations)
//
// Nodes never mutate State. They receive a value, return an Update, and the
// graph runtime merges it with State.Apply: log deltas append, directive
// deltas overwrite.
package core
