package decomp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/decomp/internal/runtime"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/observability"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/aretw0/decomp/pkg/rules"
)

// Engine is the high-level entry point for the decomp library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime  *runtime.Engine
	runner   ports.Runner
	hooks    observability.LifecycleHooks
	metrics  *observability.Metrics
	rootType string
	logger   *slog.Logger

	// serializes transformations on runners holding per-session state
	mu sync.Mutex
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks observability.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records evaluations and leaf-function calls in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithRootType changes the reserved type whose entry decomposition runs on the graph root
// (default: "Root").
func WithRootType(typ string) Option {
	return func(e *Engine) {
		e.rootType = typ
	}
}

// New initializes a new Engine delegating leaf functions to runner.
// The engine owns the runner from now on: Close finalizes it.
func New(runner ports.Runner, opts ...Option) (*Engine, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	eng := &Engine{runner: runner}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized
	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}

	hooks := eng.hooks
	if eng.metrics != nil {
		hooks = hooks.Merge(eng.metrics.Hooks())
		runner = eng.metrics.WrapRunner(runner)
	}

	eng.runtime = runtime.NewEngine(runner,
		runtime.WithLifecycleHooks(hooks.Merge(debugHooks(eng.logger))),
		runtime.WithRootType(eng.rootType),
	)
	return eng, nil
}

// Transform evaluates the first decomposition of rs against the graph rooted at root.
// Evaluation failures are returned as *diag.TransformError.
// It is safe for concurrent use; with a session-scoped runner, transformations run one at a time.
func (e *Engine) Transform(ctx context.Context, rs *rules.RuleSet, root model.ObjectModel) (any, error) {
	if _, ok := e.runner.(ports.SessionScoped); ok {
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	tc, err := e.runtime.NewContext(rs, root)
	if err != nil {
		return nil, err
	}
	defer tc.Finalize()

	logger := e.logger.With("run_id", tc.RunID, "rules", rs.Source())
	logger.Debug("transformation started")
	start := time.Now()

	v, err := tc.Transform(ctx)
	if err != nil {
		logger.Debug("transformation failed", "err", err, "took", time.Since(start))
		return nil, err
	}
	logger.Debug("transformation finished", "took", time.Since(start))
	return v, nil
}

// Validate checks, before any evaluation, that the runner implements every function rs
// needs with the expected parameters. Mismatches are returned as *ports.AggregateError.
func (e *Engine) Validate(ctx context.Context, rs *rules.RuleSet) error {
	errs, err := e.runtime.Validate(ctx, rs)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return &ports.AggregateError{Errors: errs}
	}
	return nil
}

// Close finalizes the runner. It is idempotent.
func (e *Engine) Close() error {
	return e.runner.Finalize()
}

func debugHooks(logger *slog.Logger) observability.LifecycleHooks {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return observability.LifecycleHooks{}
	}
	return observability.LifecycleHooks{
		OnDecompositionEnter: func(ctx context.Context, e *observability.DecompositionEvent) {
			logger.DebugContext(ctx, "enter", "run_id", e.RunID, "function", e.Function, "subject", e.Subject, "subject_id", e.SubjectID)
		},
		OnFunctionReturn: func(ctx context.Context, e *observability.FunctionEvent) {
			logger.DebugContext(ctx, "call", "run_id", e.RunID, "function", e.Function, "args", e.Args, "took", e.Duration, "failed", e.IsError)
		},
	}
}
