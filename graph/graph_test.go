package graph

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrinaald/ai-newsroom/core"
)

// routerNode writes the next directive from a fixed script and counts its runs.
type routerNode struct {
	mu     sync.Mutex
	name   string
	script []core.Directive
	calls  int
	domain []core.Directive
}

func (r *routerNode) Name() string { return r.name }

func (r *routerNode) Run(context.Context, core.State) (core.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := core.DirectiveUndecided
	if r.calls < len(r.script) {
		d = r.script[r.calls]
	}
	r.calls++
	return core.Route(d), nil
}

func (r *routerNode) Directives() []core.Directive { return r.domain }

func sayNode(name string) Node {
	return NewNodeFunc(name, func(_ context.Context, s core.State) (core.Update, error) {
		return core.Say(core.NewMessage(core.Sender(name), name+" output")), nil
	})
}

func newsroomRoutes() map[core.Directive]string {
	return map[core.Directive]string{
		"Researcher":            "Researcher",
		"Writer":                "Writer",
		core.DirectiveFinish:    End,
		core.DirectiveUndecided: "Supervisor",
	}
}

func buildNewsroom(t *testing.T, sup *routerNode, optFns ...func(o *Options)) *Graph {
	t.Helper()
	g, err := NewBuilder().
		AddNode(sup).
		AddNode(sayNode("Researcher")).
		AddNode(sayNode("Writer")).
		AddEdge("Researcher", "Supervisor").
		AddEdge("Writer", "Supervisor").
		AddConditionalEdges("Supervisor", newsroomRoutes()).
		SetEntryPoint("Supervisor").
		Compile(optFns...)
	require.NoError(t, err)
	return g
}

func TestCompileValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Builder
		want  error
	}{
		{
			name:  "no entry point",
			build: func() *Builder { return NewBuilder().AddNode(sayNode("A")).AddEdge("A", End) },
			want:  ErrNoEntryPoint,
		},
		{
			name: "unknown entry point",
			build: func() *Builder {
				return NewBuilder().AddNode(sayNode("A")).AddEdge("A", End).SetEntryPoint("B")
			},
			want: ErrUnknownNode,
		},
		{
			name: "edge to unknown node",
			build: func() *Builder {
				return NewBuilder().AddNode(sayNode("A")).AddEdge("A", "Ghost").SetEntryPoint("A")
			},
			want: ErrUnknownNode,
		},
		{
			name: "node without outgoing edge",
			build: func() *Builder {
				return NewBuilder().AddNode(sayNode("A")).AddNode(sayNode("B")).AddEdge("A", "B").SetEntryPoint("A")
			},
			want: ErrMissingEdge,
		},
		{
			name: "duplicate node",
			build: func() *Builder {
				return NewBuilder().AddNode(sayNode("A")).AddNode(sayNode("A")).AddEdge("A", End).SetEntryPoint("A")
			},
			want: ErrDuplicateNode,
		},
		{
			name: "two outgoing edge definitions",
			build: func() *Builder {
				return NewBuilder().AddNode(sayNode("A")).
					AddEdge("A", End).
					AddConditionalEdges("A", map[core.Directive]string{core.DirectiveFinish: End}).
					SetEntryPoint("A")
			},
			want: ErrDuplicateEdge,
		},
		{
			name: "directive domain not covered",
			build: func() *Builder {
				sup := &routerNode{name: "S", domain: []core.Directive{core.DirectiveFinish, core.DirectiveUndecided}}
				return NewBuilder().AddNode(sup).
					AddConditionalEdges("S", map[core.Directive]string{core.DirectiveFinish: End}).
					SetEntryPoint("S")
			},
			want: ErrUnmappedDirective,
		},
		{
			name:  "reserved node name",
			build: func() *Builder { return NewBuilder().AddNode(sayNode(End)).SetEntryPoint(End) },
			want:  ErrInvalidGraph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.build().Compile()
			require.Error(t, err)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrInvalidGraph)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunResearchThenWrite(t *testing.T) {
	sup := &routerNode{name: "Supervisor", script: []core.Directive{"Researcher", "Writer", core.DirectiveFinish}}
	g := buildNewsroom(t, sup)

	final, err := g.Run(context.Background(), core.NewState("topic"), 10)

	require.NoError(t, err)
	assert.Equal(t, 3, sup.calls)
	require.Equal(t, 3, final.Log.Len())
	assert.Equal(t, core.SenderUser, final.Log.At(0).Sender)
	assert.Equal(t, core.Sender("Researcher"), final.Log.At(1).Sender)
	assert.Equal(t, core.Sender("Writer"), final.Log.At(2).Sender)
	assert.Equal(t, core.DirectiveFinish, final.Directive)
	assert.Equal(t, "Supervisor", g.Entry())
	assert.Equal(t, []string{"Supervisor", "Researcher", "Writer"}, g.Nodes())
}

func TestRunSelfLoopStopsAtBudget(t *testing.T) {
	for _, budget := range []int{1, 3, 10} {
		sup := &routerNode{name: "Supervisor"}
		g := buildNewsroom(t, sup)

		final, err := g.Run(context.Background(), core.NewState("topic"), budget)

		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrStepBudgetExceeded)
		var budgetErr *core.StepBudgetError
		require.ErrorAs(t, err, &budgetErr)
		assert.Equal(t, budget, budgetErr.Steps)
		assert.Equal(t, budget, sup.calls, "exactly budget invocations")
		assert.Equal(t, 1, final.Log.Len())
		assert.Equal(t, core.DirectiveUndecided, final.Directive)
	}
}

func TestRunBudgetCountsEveryNode(t *testing.T) {
	sup := &routerNode{name: "Supervisor", script: []core.Directive{"Researcher", "Researcher", "Researcher"}}
	g := buildNewsroom(t, sup)

	final, err := g.Run(context.Background(), core.NewState("topic"), 4)

	assert.ErrorIs(t, err, core.ErrStepBudgetExceeded)
	assert.Equal(t, 2, sup.calls)
	assert.Equal(t, 3, final.Log.Len())
}

func TestRunInvalidBudget(t *testing.T) {
	g := buildNewsroom(t, &routerNode{name: "Supervisor"})
	_, err := g.Run(context.Background(), core.NewState("q"), 0)
	assert.ErrorIs(t, err, ErrInvalidBudget)
}

func TestRunUnmappedDirectiveIsFatal(t *testing.T) {
	sup := &routerNode{name: "Supervisor", script: []core.Directive{"Editor"}}
	g := buildNewsroom(t, sup)

	_, err := g.Run(context.Background(), core.NewState("q"), 10)

	var unmapped *UnmappedDirectiveError
	require.ErrorAs(t, err, &unmapped)
	assert.Equal(t, core.Directive("Editor"), unmapped.Directive)
	assert.Equal(t, "Supervisor", unmapped.Node)
	assert.ErrorIs(t, err, ErrUnmappedDirective)
	assert.Equal(t, 1, sup.calls)
}

func TestRunNodeError(t *testing.T) {
	boom := errors.New("boom")
	g, err := NewBuilder().
		AddNode(NewNodeFunc("A", func(context.Context, core.State) (core.Update, error) { return core.Update{}, boom })).
		AddEdge("A", End).
		SetEntryPoint("A").
		Compile()
	require.NoError(t, err)

	_, err = g.Run(context.Background(), core.NewState("q"), 5)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "A", nodeErr.Node)
	assert.Equal(t, 1, nodeErr.Step)
	assert.ErrorIs(t, err, boom)
}

func TestRunCancelled(t *testing.T) {
	g := buildNewsroom(t, &routerNode{name: "Supervisor"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Run(ctx, core.NewState("q"), 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStream(t *testing.T) {
	sup := &routerNode{name: "Supervisor", script: []core.Directive{"Researcher", "Writer", core.DirectiveFinish}}
	g := buildNewsroom(t, sup)

	steps, errs := g.Stream(context.Background(), core.NewState("topic"), 10)
	got, err := Collect(context.Background(), steps, errs)

	require.NoError(t, err)
	var nodes []string
	for i, s := range got {
		nodes = append(nodes, s.Node)
		assert.Equal(t, i+1, s.Index)
	}
	assert.Equal(t, []string{"Supervisor", "Researcher", "Supervisor", "Writer", "Supervisor"}, nodes)
	assert.Equal(t, core.DirectiveFinish, got[len(got)-1].State.Directive)
	assert.Len(t, got[1].Update.Messages, 1)
}

func TestStreamReportsBudgetExhaustion(t *testing.T) {
	g := buildNewsroom(t, &routerNode{name: "Supervisor"})

	steps, errs := g.Stream(context.Background(), core.NewState("topic"), 2)
	got, err := Collect(context.Background(), steps, errs)

	assert.Len(t, got, 2)
	assert.ErrorIs(t, err, core.ErrStepBudgetExceeded)
}

func TestCallbacks(t *testing.T) {
	var (
		events []string
		runEnd *CallbackContext
	)
	cm := NewCallbackManager()
	cm.RegisterCallback(NewFunctionCallback(CallbackBeforeNode, func(_ context.Context, cc *CallbackContext) error {
		events = append(events, "before:"+cc.Node)
		return nil
	}))
	cm.RegisterCallback(NewFunctionCallback(CallbackAfterNode, func(_ context.Context, cc *CallbackContext) error {
		events = append(events, "after:"+cc.Node)
		return nil
	}))
	cm.RegisterCallback(NewFunctionCallback(CallbackRunEnd, func(_ context.Context, cc *CallbackContext) error {
		c := *cc
		runEnd = &c
		return nil
	}))
	cm.RegisterCallback(NewLoggingCallback(CallbackAfterNode, nil))

	sup := &routerNode{name: "Supervisor", script: []core.Directive{"Writer", core.DirectiveFinish}}
	g := buildNewsroom(t, sup, func(o *Options) { o.Callbacks = cm })

	ctx := WithRunID(context.Background(), "run-42")
	_, err := g.Run(ctx, core.NewState("topic"), 10)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"before:Supervisor", "after:Supervisor",
		"before:Writer", "after:Writer",
		"before:Supervisor", "after:Supervisor",
	}, events)
	require.NotNil(t, runEnd)
	assert.Equal(t, "run-42", runEnd.RunID)
	assert.Equal(t, 3, runEnd.Step)
	assert.NoError(t, runEnd.Err)
	assert.Equal(t, CallbackRunEnd, runEnd.CallbackType)
}

func TestCallbackErrorAbortsRun(t *testing.T) {
	stop := errors.New("stop")
	cm := NewCallbackManager()
	cm.RegisterCallback(NewFunctionCallback(CallbackBeforeNode, func(_ context.Context, cc *CallbackContext) error {
		if cc.Node == "Writer" {
			return stop
		}
		return nil
	}))

	sup := &routerNode{name: "Supervisor", script: []core.Directive{"Writer"}}
	g := buildNewsroom(t, sup, func(o *Options) { o.Callbacks = cm })

	final, err := g.Run(context.Background(), core.NewState("topic"), 10)

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, final.Log.Len())
	assert.Equal(t, core.Directive("Writer"), final.Directive)
}

func TestRunIDFromContext(t *testing.T) {
	_, ok := RunIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := RunIDFromContext(WithRunID(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}
