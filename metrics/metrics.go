package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrinaald/ai-newsroom/agent"
	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/graph"
)

const namespace = "newsroom"

// Run outcomes used as the "outcome" label of newsroom_runs_total.
const (
	RunFinished        = "finished"
	RunBudgetExhausted = "budget_exhausted"
	RunCanceled        = "canceled"
	RunFailed          = "error"
)

// Collector owns the newsroom metric vectors.
type Collector struct {
	nodeVisits   *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	attempts     *prometheus.CounterVec
	decisions    *prometheus.CounterVec
	runs         *prometheus.CounterVec
}

var _ agent.Observer = (*Collector)(nil)

// NewCollector registers the newsroom metrics with reg. A nil reg uses the
// default Prometheus registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		nodeVisits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_visits_total",
			Help:      "Total node invocations by node",
		}, []string{"node"}),
		nodeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_duration_seconds",
			Help:      "Node run time in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"node"}),
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_attempts_total",
			Help:      "Worker generation attempts by outcome",
		}, []string{"worker", "outcome"}),
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_decisions_total",
			Help:      "Supervisor routing decisions by strategy",
		}, []string{"policy", "decision"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveAttempt implements agent.Observer.
func (c *Collector) ObserveAttempt(worker string, outcome agent.AttemptOutcome) {
	c.attempts.WithLabelValues(worker, string(outcome)).Inc()
}

// ObserveDecision implements agent.Observer.
func (c *Collector) ObserveDecision(strategy agent.Strategy, directive core.Directive) {
	c.decisions.WithLabelValues(string(strategy), directive.String()).Inc()
}

// Attach registers the node and run callbacks on cm.
func (c *Collector) Attach(cm *graph.CallbackManager) {
	cm.RegisterCallback(graph.NewFunctionCallback(graph.CallbackAfterNode, c.afterNode))
	cm.RegisterCallback(graph.NewFunctionCallback(graph.CallbackRunEnd, c.runEnd))
}

func (c *Collector) afterNode(_ context.Context, cc *graph.CallbackContext) error {
	c.nodeVisits.WithLabelValues(cc.Node).Inc()
	c.nodeDuration.WithLabelValues(cc.Node).Observe(cc.Duration.Seconds())
	return nil
}

func (c *Collector) runEnd(_ context.Context, cc *graph.CallbackContext) error {
	c.runs.WithLabelValues(RunOutcome(cc.Err)).Inc()
	return nil
}

// RunOutcome classifies the terminal error of a run.
func RunOutcome(err error) string {
	switch {
	case err == nil:
		return RunFinished
	case errors.Is(err, core.ErrStepBudgetExceeded):
		return RunBudgetExhausted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return RunCanceled
	default:
		return RunFailed
	}
}

// Handler returns an HTTP handler serving the metrics gathered by g. A nil g
// serves the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
