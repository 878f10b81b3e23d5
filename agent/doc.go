// Package agent contains the newsroom's graph nodes: the Supervisor, which
// owns routing, and the Worker, which turns a text generation capability
// into a robust node with retry.
//
// Division of labour:
//
//  1. Supervisor decides. It never appends to the conversation log; its
//     update only carries the next directive. It never fails either: a
//     generation fault or an answer it cannot parse becomes UNDECIDED.
//  2. Workers produce. Each run appends exactly one message tagged with the
//     worker's name: either the generated content or a failure sentinel once
//     every attempt was spent.
//
// Both read an immutable core.State and leave merging to the graph runtime.
// Role instructions are described by Instruction (static text, a text
// template rendered against the state, or a dynamic provider).
package agent
