// Package newsroom provides a high-level façade over the graph runtime and
// the newsroom roles. A Newsroom wires a Supervisor that routes, a
// Researcher that gathers material and a Writer that drafts the final
// Markdown report into one compiled graph:
//
//	Supervisor --Researcher--> Researcher --> Supervisor
//	Supervisor --Writer------> Writer ------> Supervisor
//	Supervisor --FINISH------> end
//	Supervisor --UNDECIDED---> Supervisor
//
// Most applications create a Newsroom via New with a model.Generator and
// call Run (or Stream) with a research topic. Each run is ephemeral; the
// returned core.State holds the complete conversation log.
package newsroom

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrinaald/ai-newsroom/agent"
	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/graph"
	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/model"
	"github.com/mrinaald/ai-newsroom/tool"
)

// DefaultStepBudget is the number of node invocations a run may perform.
const DefaultStepBudget = 10

var (
	// ErrNoGenerator is returned by New when a role has no generator.
	ErrNoGenerator = errors.New("newsroom: no generator configured")
	// ErrEmptyQuery is returned when a run is started without a topic.
	ErrEmptyQuery = errors.New("newsroom: empty query")
)

// Options configures a Newsroom.
type Options struct {
	// Generator serves every role that has no dedicated generator.
	Generator model.Generator
	// ResearchGenerator, SupervisorGenerator and WriterGenerator override
	// Generator per role.
	ResearchGenerator   model.Generator
	SupervisorGenerator model.Generator
	WriterGenerator     model.Generator

	// Search, when set, is queried before every Researcher generation and
	// its results are folded into the Researcher's instruction.
	Search tool.Tool

	Strategy agent.Strategy
	// StepBudget is the maximum number of node invocations per run.
	StepBudget int
	Retry      agent.RetryPolicy
	// CallTimeout bounds every single model call. Zero disables it.
	CallTimeout time.Duration

	// ResearcherInstruction and WriterInstruction replace the built-in prompts.
	ResearcherInstruction agent.Instruction
	WriterInstruction     agent.Instruction

	// ExtraWorkers are registered next to Researcher and Writer. They report
	// back to the Supervisor and are reachable under the delegate strategy
	// when the model answers with their exact name.
	ExtraWorkers []*agent.Worker

	Logger    logging.Logger
	Observer  agent.Observer
	Callbacks *graph.CallbackManager
	// WorkerSleep replaces the pause between worker attempts, mainly for tests.
	WorkerSleep func(ctx context.Context, d time.Duration) error
}

// Newsroom is a compiled newsroom graph.
type Newsroom struct {
	opts       Options
	graph      *graph.Graph
	supervisor *agent.Supervisor
	logger     logging.Logger
}

// New builds and compiles the newsroom graph.
func New(optFns ...func(o *Options)) (*Newsroom, error) {
	opts := Options{
		Strategy:    agent.StrategyDeterministic,
		StepBudget:  DefaultStepBudget,
		Retry:       agent.DefaultRetryPolicy(),
		CallTimeout: 2 * time.Minute,
		Logger:      logging.NoOpLogger{},
		Observer:    agent.NoOpObserver{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Observer == nil {
		opts.Observer = agent.NoOpObserver{}
	}
	if opts.ResearcherInstruction.IsZero() {
		opts.ResearcherInstruction = agent.NewInstructionFromText(agent.ResearcherInstruction)
	}
	if opts.WriterInstruction.IsZero() {
		opts.WriterInstruction = agent.NewInstructionFromText(agent.WriterInstruction)
	}

	research := firstGenerator(opts.ResearchGenerator, opts.Generator)
	supervise := firstGenerator(opts.SupervisorGenerator, opts.Generator)
	write := firstGenerator(opts.WriterGenerator, opts.Generator)
	if research == nil || supervise == nil || write == nil {
		return nil, ErrNoGenerator
	}
	if opts.Search != nil {
		research = model.NewSearchAugmented(research, opts.Search, func(o *model.SearchOptions) {
			o.Logger = opts.Logger
		})
	}

	extraNames := make([]string, 0, len(opts.ExtraWorkers))
	for _, w := range opts.ExtraWorkers {
		extraNames = append(extraNames, w.Name())
	}

	supervisor := agent.NewSupervisor(supervise, func(o *agent.SupervisorOptions) {
		o.Strategy = opts.Strategy
		o.CallTimeout = opts.CallTimeout
		o.Workers = extraNames
		o.Logger = opts.Logger
		o.Observer = opts.Observer
	})
	researcher := agent.NewWorker(agent.ResearcherName, research, workerOptions(opts, opts.ResearcherInstruction))
	writer := agent.NewWorker(agent.WriterName, write, workerOptions(opts, opts.WriterInstruction))

	routes := map[core.Directive]string{
		agent.DecisionResearcher.Directive(): agent.ResearcherName,
		agent.DecisionWriter.Directive():     agent.WriterName,
		core.DirectiveFinish:                 graph.End,
		core.DirectiveUndecided:              agent.SupervisorName,
	}

	b := graph.NewBuilder().
		AddNode(supervisor).
		AddNode(researcher).
		AddNode(writer).
		AddEdge(agent.ResearcherName, agent.SupervisorName).
		AddEdge(agent.WriterName, agent.SupervisorName)
	for _, w := range opts.ExtraWorkers {
		b.AddNode(w).AddEdge(w.Name(), agent.SupervisorName)
		routes[core.Directive(w.Name())] = w.Name()
	}

	g, err := b.AddConditionalEdges(agent.SupervisorName, routes).
		SetEntryPoint(agent.SupervisorName).
		Compile(func(o *graph.Options) {
			o.Logger = opts.Logger
			o.Callbacks = opts.Callbacks
		})
	if err != nil {
		return nil, fmt.Errorf("compile newsroom graph: %w", err)
	}

	return &Newsroom{opts: opts, graph: g, supervisor: supervisor, logger: opts.Logger}, nil
}

func workerOptions(opts Options, instr agent.Instruction) func(o *agent.WorkerOptions) {
	return func(o *agent.WorkerOptions) {
		o.Instruction = instr
		o.Retry = opts.Retry
		o.CallTimeout = opts.CallTimeout
		o.Logger = opts.Logger
		o.Observer = opts.Observer
		if opts.WorkerSleep != nil {
			o.Sleep = opts.WorkerSleep
		}
	}
}

func firstGenerator(gs ...model.Generator) model.Generator {
	for _, g := range gs {
		if g != nil {
			return g
		}
	}
	return nil
}

// Graph returns the compiled graph.
func (n *Newsroom) Graph() *graph.Graph { return n.graph }

// Strategy returns the Supervisor's routing strategy.
func (n *Newsroom) Strategy() agent.Strategy { return n.supervisor.Strategy() }

// StepBudget returns the per-run invocation budget.
func (n *Newsroom) StepBudget() int { return n.opts.StepBudget }

// Run researches query and returns the final state. When the step budget is
// exhausted the last state is returned together with a *core.StepBudgetError.
func (n *Newsroom) Run(ctx context.Context, query string) (core.State, error) {
	initial, err := initialState(query)
	if err != nil {
		return core.State{}, err
	}
	return n.graph.Run(n.withRunID(ctx), initial, n.opts.StepBudget)
}

// Stream starts a run and delivers every merged step. See graph.Graph.Stream.
func (n *Newsroom) Stream(ctx context.Context, query string) (<-chan graph.Step, <-chan error) {
	initial, err := initialState(query)
	if err != nil {
		steps := make(chan graph.Step)
		errs := make(chan error, 1)
		close(steps)
		errs <- err
		close(errs)
		return steps, errs
	}
	return n.graph.Stream(n.withRunID(ctx), initial, n.opts.StepBudget)
}

// Report returns the content of the Writer's last message.
func Report(state core.State) (string, bool) {
	m, ok := state.Log.LastFrom(core.SenderWriter)
	if !ok {
		return "", false
	}
	return m.Content, true
}

func (n *Newsroom) withRunID(ctx context.Context) context.Context {
	if _, ok := graph.RunIDFromContext(ctx); ok {
		return ctx
	}
	return graph.WithRunID(ctx, core.NewID())
}

func initialState(query string) (core.State, error) {
	if strings.TrimSpace(query) == "" {
		return core.State{}, ErrEmptyQuery
	}
	return core.NewState(query), nil
}
