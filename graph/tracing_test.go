package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mrinaald/ai-newsroom/core"
)

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRunSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	sup := &routerNode{name: "Supervisor", script: []core.Directive{"Researcher", "Writer", core.DirectiveFinish}}
	g := buildNewsroom(t, sup, func(o *Options) { o.TracerProvider = tp })

	_, err := g.Run(WithRunID(context.Background(), "run-1"), core.NewState("q"), 10)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 6)

	run := spans[len(spans)-1]
	assert.Equal(t, "graph.Run", run.Name())
	assert.Equal(t, codes.Ok, run.Status().Code)
	v, ok := attr(run, "graph.run_id")
	require.True(t, ok)
	assert.Equal(t, "run-1", v.AsString())
	v, ok = attr(run, "graph.steps")
	require.True(t, ok)
	assert.Equal(t, int64(5), v.AsInt64())

	var nodes []string
	for _, s := range spans[:5] {
		assert.Equal(t, "graph.Node", s.Name())
		assert.Equal(t, run.SpanContext().SpanID(), s.Parent().SpanID())
		v, _ := attr(s, "graph.node")
		nodes = append(nodes, v.AsString())
	}
	assert.Equal(t, []string{"Supervisor", "Researcher", "Supervisor", "Writer", "Supervisor"}, nodes)
}

func TestRunSpanBudgetStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	sup := &routerNode{name: "Supervisor", script: []core.Directive{"Researcher", "Researcher", "Researcher"}}
	g := buildNewsroom(t, sup, func(o *Options) { o.TracerProvider = tp })

	_, err := g.Run(context.Background(), core.NewState("q"), 3)
	require.ErrorIs(t, err, core.ErrStepBudgetExceeded)

	spans := recorder.Ended()
	run := spans[len(spans)-1]
	assert.Equal(t, codes.Error, run.Status().Code)
	assert.Equal(t, "step budget exceeded", run.Status().Description)
}
