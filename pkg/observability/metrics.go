package observability

import (
	"context"
	"time"

	"github.com/aretw0/decomp/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for transformations.
type Metrics struct {
	Evaluations      *prometheus.CounterVec
	EvaluationErrors *prometheus.CounterVec
	Calls            *prometheus.CounterVec
	CallDuration     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg (if not nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decomp_decomposition_evaluations_total",
				Help: "Total number of decomposition evaluations",
			},
			[]string{"function"},
		),
		EvaluationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decomp_decomposition_errors_total",
				Help: "Total number of decomposition evaluations that failed",
			},
			[]string{"function"},
		),
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decomp_function_calls_total",
				Help: "Total number of leaf-function calls by outcome",
			},
			[]string{"function", "outcome"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "decomp_function_duration_seconds",
				Help:    "Duration of leaf-function calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"function"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Evaluations, m.EvaluationErrors, m.Calls, m.CallDuration)
	}
	return m
}

// Hooks returns lifecycle hooks counting decomposition evaluations.
func (m *Metrics) Hooks() LifecycleHooks {
	return LifecycleHooks{
		OnDecompositionEnter: func(_ context.Context, e *DecompositionEvent) {
			m.Evaluations.WithLabelValues(e.Function).Inc()
		},
		OnDecompositionLeave: func(_ context.Context, e *DecompositionEvent) {
			if e.IsError {
				m.EvaluationErrors.WithLabelValues(e.Function).Inc()
			}
		},
	}
}

// WrapRunner decorates a Runner so every CallFunction is counted and timed.
func (m *Metrics) WrapRunner(r ports.Runner) ports.Runner {
	return &instrumentedRunner{Runner: r, metrics: m}
}

type instrumentedRunner struct {
	ports.Runner
	metrics *Metrics
}

func (r *instrumentedRunner) CallFunction(ctx context.Context, name string, args []any) (any, error) {
	start := time.Now()
	out, err := r.Runner.CallFunction(ctx, name, args)
	r.metrics.CallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	r.metrics.Calls.WithLabelValues(name, outcome(err)).Inc()
	return out, err
}

// EndSession forwards to the wrapped runner when it keeps per-session state.
func (r *instrumentedRunner) EndSession() {
	if s, ok := r.Runner.(ports.SessionScoped); ok {
		s.EndSession()
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
