package newsroom

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrinaald/ai-newsroom/agent"
	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/graph"
	"github.com/mrinaald/ai-newsroom/model"
	"github.com/mrinaald/ai-newsroom/tool"
)

func noPause(context.Context, time.Duration) error { return nil }

func senders(state core.State) []core.Sender {
	var out []core.Sender
	for _, m := range state.Log.Messages() {
		out = append(out, m.Sender)
	}
	return out
}

func TestRunEndToEnd(t *testing.T) {
	research := model.NewMockModel("research").Reply("Topic X is growing fast.")
	supervise := model.NewMockModel("supervise").Reply("Writer")
	write := model.NewMockModel("write").Reply("# Topic X\n\n- growing fast")

	nr, err := New(func(o *Options) {
		o.ResearchGenerator = research
		o.SupervisorGenerator = supervise
		o.WriterGenerator = write
	})
	require.NoError(t, err)

	state, err := nr.Run(context.Background(), "Summarize topic X")
	require.NoError(t, err)

	assert.Equal(t, []core.Sender{core.SenderUser, core.SenderResearcher, core.SenderWriter}, senders(state))
	assert.Equal(t, core.DirectiveFinish, state.Directive)
	assert.Equal(t, 1, supervise.Calls(), "only the research-or-write question reaches the model")

	report, ok := Report(state)
	require.True(t, ok)
	assert.Equal(t, "# Topic X\n\n- growing fast", report)

	writerReq := write.Requests()[0]
	assert.Contains(t, writerReq.Instruction, "Summarize topic X")
	assert.Len(t, writerReq.Messages, 2)
}

func TestRunBudgetExhausted(t *testing.T) {
	m := model.NewMockModel("m").Default("Researcher needs more")

	nr, err := New(func(o *Options) {
		o.Generator = m
		o.StepBudget = 4
	})
	require.NoError(t, err)

	state, err := nr.Run(context.Background(), "endless topic")

	var budgetErr *core.StepBudgetError
	require.ErrorAs(t, err, &budgetErr)
	assert.Equal(t, 4, budgetErr.Budget)
	assert.Equal(t, 4, budgetErr.Steps)

	// Supervisor, Researcher, Supervisor, Researcher.
	assert.Equal(t, []core.Sender{core.SenderUser, core.SenderResearcher, core.SenderResearcher}, senders(state))
	assert.Equal(t, core.Directive(agent.ResearcherName), state.Directive)
}

func TestRunWriterFailureSentinel(t *testing.T) {
	research := model.NewMockModel("research").Reply("facts")
	supervise := model.NewMockModel("supervise").Reply("Writer")
	write := model.NewMockModel("write").Default("   ")

	nr, err := New(func(o *Options) {
		o.ResearchGenerator = research
		o.SupervisorGenerator = supervise
		o.WriterGenerator = write
		o.WorkerSleep = noPause
	})
	require.NoError(t, err)

	state, err := nr.Run(context.Background(), "topic")
	require.NoError(t, err)

	require.Equal(t, 3, state.Log.Len())
	last, _ := state.Log.Last()
	assert.Equal(t, core.SenderWriter, last.Sender)
	assert.Equal(t, agent.DefaultFailureText, last.Content)
	assert.Equal(t, core.DirectiveFinish, state.Directive)
	assert.Equal(t, 3, write.Calls())
}

func TestRunResearcherInstructionFailure(t *testing.T) {
	nr, err := New(func(o *Options) {
		o.Generator = model.NewMockModel("m").Reply("Writer", "# Report")
		o.ResearcherInstruction = agent.NewInstructionFromFunc(func(core.State) (string, error) {
			return "", errors.New("prompt store unavailable")
		})
		o.WorkerSleep = noPause
	})
	require.NoError(t, err)

	state, err := nr.Run(context.Background(), "topic")
	require.NoError(t, err)

	assert.Equal(t, []core.Sender{core.SenderUser, core.SenderResearcher, core.SenderWriter}, senders(state))
	researched, ok := state.Log.LastFrom(core.SenderResearcher)
	require.True(t, ok)
	assert.Equal(t, agent.DefaultFailureText, researched.Content)
	assert.Equal(t, core.DirectiveFinish, state.Directive)
}

func TestRunDelegateSelfLoop(t *testing.T) {
	supervise := model.NewMockModel("supervise").
		Reply("I am not sure yet").
		Fail(errors.New("overloaded")).
		Reply("Researcher", "Writer", "FINISH")
	workers := model.NewMockModel("workers").Reply("notes", "# Report")

	nr, err := New(func(o *Options) {
		o.Generator = workers
		o.SupervisorGenerator = supervise
		o.Strategy = agent.StrategyDelegate
	})
	require.NoError(t, err)
	assert.Equal(t, agent.StrategyDelegate, nr.Strategy())

	stepCh, errCh := nr.Stream(context.Background(), "topic")
	steps, err := graph.Collect(context.Background(), stepCh, errCh)
	require.NoError(t, err)

	var path []string
	var directives []core.Directive
	for _, s := range steps {
		path = append(path, s.Node)
		if s.Update.Directive != nil {
			directives = append(directives, *s.Update.Directive)
		}
	}
	assert.Equal(t, []string{
		"Supervisor", "Supervisor", "Supervisor", "Researcher", "Supervisor", "Writer", "Supervisor",
	}, path)
	assert.Equal(t, []core.Directive{
		core.DirectiveUndecided, core.DirectiveUndecided, "Researcher", "Writer", core.DirectiveFinish,
	}, directives)

	final := steps[len(steps)-1].State
	assert.Equal(t, 3, final.Log.Len())
}

func TestRunWithSearch(t *testing.T) {
	var queries []string
	search := tool.NewFunctionTool("search", "test search", func(_ context.Context, q string) (string, error) {
		queries = append(queries, q)
		return "1. Result about " + q, nil
	})
	research := model.NewMockModel("research").Reply("findings")

	nr, err := New(func(o *Options) {
		o.Generator = model.NewMockModel("rest").Reply("Writer", "# Report")
		o.ResearchGenerator = research
		o.Search = search
	})
	require.NoError(t, err)

	_, err = nr.Run(context.Background(), "fusion energy")
	require.NoError(t, err)

	assert.Equal(t, []string{"fusion energy"}, queries)
	instr := research.Requests()[0].Instruction
	assert.True(t, strings.Contains(instr, "Result about fusion energy"), instr)
}

func TestRunExtraWorker(t *testing.T) {
	editor := agent.NewWorker("Editor", model.NewMockModel("editor").Reply("edited"))
	supervise := model.NewMockModel("supervise").Reply("Editor", "FINISH")

	nr, err := New(func(o *Options) {
		o.Generator = model.NewMockModel("unused")
		o.SupervisorGenerator = supervise
		o.Strategy = agent.StrategyDelegate
		o.ExtraWorkers = []*agent.Worker{editor}
	})
	require.NoError(t, err)
	assert.Contains(t, nr.Graph().Nodes(), "Editor")

	state, err := nr.Run(context.Background(), "topic")
	require.NoError(t, err)
	assert.Equal(t, []core.Sender{core.SenderUser, "Editor"}, senders(state))
}

func TestRunCallbacks(t *testing.T) {
	var mu sync.Mutex
	var visited []string
	cm := graph.NewCallbackManager()
	cm.RegisterCallback(graph.NewFunctionCallback(graph.CallbackBeforeNode, func(_ context.Context, cc *graph.CallbackContext) error {
		mu.Lock()
		defer mu.Unlock()
		visited = append(visited, cc.Node)
		return nil
	}))

	var runIDs []string
	cm.RegisterCallback(graph.NewFunctionCallback(graph.CallbackRunEnd, func(_ context.Context, cc *graph.CallbackContext) error {
		runIDs = append(runIDs, cc.RunID)
		return nil
	}))

	nr, err := New(func(o *Options) {
		o.Generator = model.NewMockModel("m").Reply("facts", "Writer", "# Report")
		o.Callbacks = cm
	})
	require.NoError(t, err)

	_, err = nr.Run(context.Background(), "topic")
	require.NoError(t, err)
	_, err = nr.Run(graph.WithRunID(context.Background(), "fixed"), "topic")
	require.NoError(t, err)

	assert.Equal(t, []string{"Supervisor", "Researcher", "Supervisor", "Writer", "Supervisor"}, visited[:5])
	require.Len(t, runIDs, 2)
	assert.NotEmpty(t, runIDs[0])
	assert.Equal(t, "fixed", runIDs[1])
}

func TestNewErrors(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrNoGenerator)

	_, err = New(func(o *Options) { o.ResearchGenerator = model.NewMockModel("r") })
	assert.ErrorIs(t, err, ErrNoGenerator)

	_, err = New(func(o *Options) {
		o.Generator = model.NewMockModel("m")
		o.ExtraWorkers = []*agent.Worker{agent.NewWorker(agent.WriterName, model.NewMockModel("dup"))}
	})
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}

func TestRunEmptyQuery(t *testing.T) {
	nr, err := New(func(o *Options) { o.Generator = model.NewMockModel("m") })
	require.NoError(t, err)

	_, err = nr.Run(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	stepCh, errCh := nr.Stream(context.Background(), "")
	steps, err := graph.Collect(context.Background(), stepCh, errCh)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, steps)
}

func TestRunCancelled(t *testing.T) {
	nr, err := New(func(o *Options) {
		o.Generator = model.NewMockModel("m").Hang()
		o.CallTimeout = 0
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	state, err := nr.Run(ctx, "topic")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, state.Log.Len())
}
