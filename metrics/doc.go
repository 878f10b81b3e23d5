// Package metrics exposes Prometheus instrumentation for newsroom runs.
//
// A Collector counts node visits and their duration through graph callbacks,
// and worker attempts and routing decisions through the agent.Observer
// interface. Handler serves the registry in the Prometheus text format.
package metrics
