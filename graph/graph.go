package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/logging"
)

// End is the terminal transition target.
const End = "__end__"

// Node is a unit of work in the graph. Run receives a read-only view of the
// shared state and returns the delta to merge.
type Node interface {
	Name() string
	Run(ctx context.Context, state core.State) (core.Update, error)
}

// DirectiveDomain is implemented by nodes that know every directive they can
// write. Compile uses it to prove their conditional routes are complete.
type DirectiveDomain interface {
	Directives() []core.Directive
}

type nodeFunc struct {
	name string
	fn   func(ctx context.Context, state core.State) (core.Update, error)
}

func (n *nodeFunc) Name() string { return n.name }

func (n *nodeFunc) Run(ctx context.Context, state core.State) (core.Update, error) {
	return n.fn(ctx, state)
}

// NewNodeFunc adapts a function to a Node.
func NewNodeFunc(name string, fn func(ctx context.Context, state core.State) (core.Update, error)) Node {
	return &nodeFunc{name: name, fn: fn}
}

// Options configure a compiled graph.
type Options struct {
	Logger    logging.Logger
	Callbacks *CallbackManager
	// StreamBuffer is the channel capacity used by Stream.
	StreamBuffer int
	// TracerProvider creates the run and node spans. Defaults to the global
	// OpenTelemetry provider.
	TracerProvider trace.TracerProvider
}

// Builder assembles nodes and transitions. Mistakes are collected and
// reported together by Compile.
type Builder struct {
	nodes  map[string]Node
	order  []string
	edges  map[string]string
	routes map[string]map[core.Directive]string
	entry  string
	errs   []error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:  make(map[string]Node),
		edges:  make(map[string]string),
		routes: make(map[string]map[core.Directive]string),
	}
}

// AddNode registers a node under its name.
func (b *Builder) AddNode(n Node) *Builder {
	if n == nil {
		b.errs = append(b.errs, errors.New("nil node"))
		return b
	}
	name := n.Name()
	switch {
	case name == "" || name == End:
		b.errs = append(b.errs, fmt.Errorf("invalid node name %q", name))
	case b.nodes[name] != nil:
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrDuplicateNode, name))
	default:
		b.nodes[name] = n
		b.order = append(b.order, name)
	}
	return b
}

// AddEdge adds an unconditional transition from one node to another (or End).
func (b *Builder) AddEdge(from, to string) *Builder {
	if b.hasOutgoing(from) {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrDuplicateEdge, from))
		return b
	}
	b.edges[from] = to
	return b
}

// AddConditionalEdges routes from a node according to the directive in the
// just-updated state. The map is copied.
func (b *Builder) AddConditionalEdges(from string, routes map[core.Directive]string) *Builder {
	if b.hasOutgoing(from) {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrDuplicateEdge, from))
		return b
	}
	cp := make(map[core.Directive]string, len(routes))
	for d, to := range routes {
		cp[d] = to
	}
	b.routes[from] = cp
	return b
}

// SetEntryPoint selects the first node to run.
func (b *Builder) SetEntryPoint(name string) *Builder {
	b.entry = name
	return b
}

func (b *Builder) hasOutgoing(name string) bool {
	_, e := b.edges[name]
	_, r := b.routes[name]
	return e || r
}

// Compile validates the graph and returns an executable Graph. Every
// configuration problem is reported, wrapped in ErrInvalidGraph.
func (b *Builder) Compile(optFns ...func(o *Options)) (*Graph, error) {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		StreamBuffer: 16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Callbacks == nil {
		opts.Callbacks = NewCallbackManager()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	errs := append([]error(nil), b.errs...)

	switch {
	case b.entry == "":
		errs = append(errs, ErrNoEntryPoint)
	case b.nodes[b.entry] == nil:
		errs = append(errs, fmt.Errorf("%w: entry point %s", ErrUnknownNode, b.entry))
	}

	for _, from := range sortedKeys(b.edges) {
		if b.nodes[from] == nil {
			errs = append(errs, fmt.Errorf("%w: edge source %s", ErrUnknownNode, from))
		}
		if to := b.edges[from]; !b.isTarget(to) {
			errs = append(errs, fmt.Errorf("%w: edge %s -> %s", ErrUnknownNode, from, to))
		}
	}

	for _, from := range sortedKeys(b.routes) {
		routes := b.routes[from]
		n := b.nodes[from]
		if n == nil {
			errs = append(errs, fmt.Errorf("%w: conditional source %s", ErrUnknownNode, from))
			continue
		}
		if len(routes) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s has an empty route map", ErrMissingEdge, from))
		}
		for _, d := range sortedKeys(routes) {
			if to := routes[d]; !b.isTarget(to) {
				errs = append(errs, fmt.Errorf("%w: route %s[%q] -> %s", ErrUnknownNode, from, d, to))
			}
		}
		if dom, ok := n.(DirectiveDomain); ok {
			for _, d := range dom.Directives() {
				if _, mapped := routes[d]; !mapped {
					errs = append(errs, &UnmappedDirectiveError{Node: from, Directive: d})
				}
			}
		}
	}

	for _, name := range b.order {
		if !b.hasOutgoing(name) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingEdge, name))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(errs...))
	}

	g := &Graph{
		nodes:  make(map[string]Node, len(b.nodes)),
		order:  append([]string(nil), b.order...),
		edges:  make(map[string]string, len(b.edges)),
		routes: make(map[string]map[core.Directive]string, len(b.routes)),
		entry:  b.entry,
		opts:   opts,
		logger: logging.With(opts.Logger, "component", "graph"),
		tracer: opts.TracerProvider.Tracer(TracerName),
	}
	for k, v := range b.nodes {
		g.nodes[k] = v
	}
	for k, v := range b.edges {
		g.edges[k] = v
	}
	for k, v := range b.routes {
		g.routes[k] = v
	}
	return g, nil
}

func (b *Builder) isTarget(name string) bool {
	return name == End || b.nodes[name] != nil
}

// Graph is a compiled, immutable graph. It is safe for concurrent runs.
type Graph struct {
	nodes  map[string]Node
	order  []string
	edges  map[string]string
	routes map[string]map[core.Directive]string
	entry  string
	opts   Options
	logger logging.Logger
	tracer trace.Tracer
}

// Entry returns the entry node name.
func (g *Graph) Entry() string { return g.entry }

// Nodes returns the node names in registration order.
func (g *Graph) Nodes() []string { return append([]string(nil), g.order...) }

// Successor resolves the node that follows from given the just-updated
// state. It returns End when the run should stop.
func (g *Graph) Successor(from string, state core.State) (string, error) {
	if to, ok := g.edges[from]; ok {
		return to, nil
	}
	routes, ok := g.routes[from]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingEdge, from)
	}
	to, ok := routes[state.Directive]
	if !ok {
		return "", &UnmappedDirectiveError{Node: from, Directive: state.Directive}
	}
	return to, nil
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
