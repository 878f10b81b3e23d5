package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/model"
)

// Strategy selects how the Supervisor decides.
type Strategy string

const (
	// StrategyDeterministic routes on the last sender and only asks the model
	// whether research is sufficient after the Researcher spoke.
	StrategyDeterministic Strategy = "deterministic"
	// StrategyDelegate asks the model for every decision.
	StrategyDelegate Strategy = "delegate"
)

// ParseStrategy converts a configuration value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyDeterministic:
		return StrategyDeterministic, nil
	case StrategyDelegate:
		return StrategyDelegate, nil
	default:
		return "", fmt.Errorf("unknown routing strategy %q", s)
	}
}

// SupervisorOptions configure a Supervisor.
type SupervisorOptions struct {
	Strategy Strategy
	// Instruction is used by the delegate strategy.
	Instruction Instruction
	// BinaryInstruction is used by the deterministic strategy.
	BinaryInstruction Instruction
	// CallTimeout bounds a single generation call. Zero disables it.
	CallTimeout time.Duration
	// Workers lists additional worker nodes the delegate strategy may route
	// to when the model answers with their exact name.
	Workers  []string
	Logger   logging.Logger
	Observer Observer
}

// Supervisor is the routing node. Its update only ever carries a directive.
type Supervisor struct {
	generator model.Generator
	opts      SupervisorOptions
	logger    logging.Logger
	observer  Observer
}

// NewSupervisor creates the routing node around generator.
func NewSupervisor(generator model.Generator, optFns ...func(o *SupervisorOptions)) *Supervisor {
	opts := SupervisorOptions{
		Strategy:          StrategyDeterministic,
		Instruction:       NewInstructionFromText(DelegateInstruction),
		BinaryInstruction: NewInstructionFromText(BinaryInstruction),
		Logger:            logging.NoOpLogger{},
		Observer:          NoOpObserver{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Observer == nil {
		opts.Observer = NoOpObserver{}
	}

	return &Supervisor{
		generator: generator,
		opts:      opts,
		logger:    logging.With(opts.Logger, "component", "supervisor", "strategy", string(opts.Strategy)),
		observer:  opts.Observer,
	}
}

// Name implements graph.Node.
func (s *Supervisor) Name() string { return SupervisorName }

// Strategy returns the configured strategy.
func (s *Supervisor) Strategy() Strategy { return s.opts.Strategy }

// Directives lists every directive the Supervisor can write.
func (s *Supervisor) Directives() []core.Directive {
	out := []core.Directive{
		DecisionResearcher.Directive(),
		DecisionWriter.Directive(),
		core.DirectiveFinish,
		core.DirectiveUndecided,
	}
	for _, w := range s.opts.Workers {
		out = append(out, core.Directive(w))
	}
	return out
}

// Run implements graph.Node. It never returns an error.
func (s *Supervisor) Run(ctx context.Context, state core.State) (core.Update, error) {
	d := s.Decide(ctx, state)
	s.observer.ObserveDecision(s.opts.Strategy, d)
	return core.Route(d), nil
}

// Decide computes the next directive for state.
func (s *Supervisor) Decide(ctx context.Context, state core.State) core.Directive {
	if s.opts.Strategy == StrategyDelegate {
		return s.delegate(ctx, state)
	}
	return s.deterministic(ctx, state)
}

func (s *Supervisor) deterministic(ctx context.Context, state core.State) core.Directive {
	last, _ := state.Log.Last()
	switch last.Sender {
	case core.SenderWriter:
		s.logger.Info("Writer delivered the report, finishing")
		return core.DirectiveFinish
	case core.SenderResearcher:
		answer, err := s.ask(ctx, s.opts.BinaryInstruction, state)
		if err != nil {
			return core.DirectiveUndecided
		}
		d := ParseBinaryDecision(answer)
		s.logger.Info("Routing after research", "answer", answer, "decision", d.String())
		return d.Directive()
	default:
		s.logger.Info("Starting with research", "last_sender", last.Sender.String())
		return DecisionResearcher.Directive()
	}
}

func (s *Supervisor) delegate(ctx context.Context, state core.State) core.Directive {
	answer, err := s.ask(ctx, s.opts.Instruction, state)
	if err != nil {
		return core.DirectiveUndecided
	}

	d := ParseDecision(answer)
	if d == DecisionUndecided {
		trimmed := strings.TrimSpace(answer)
		for _, w := range s.opts.Workers {
			if trimmed == w {
				s.logger.Info("Routing to registered worker", "worker", w)
				return core.Directive(w)
			}
		}
		s.logger.Warn("Unparseable routing answer", "answer", answer)
	} else {
		s.logger.Info("Routing decision", "answer", answer, "decision", d.String())
	}
	return d.Directive()
}

func (s *Supervisor) ask(ctx context.Context, instr Instruction, state core.State) (string, error) {
	text, err := instr.Resolve(state)
	if err != nil {
		s.logger.Error("Instruction could not be resolved", "error", err.Error())
		return "", err
	}

	if s.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.CallTimeout)
		defer cancel()
	}

	answer, err := s.generator.Generate(ctx, model.Request{Instruction: text, Messages: state.Log.Messages()})
	if err != nil {
		s.logger.Warn("Routing call failed, leaving decision undecided", "error", err.Error())
		return "", err
	}
	return answer, nil
}
