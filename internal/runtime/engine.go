package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/observability"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/aretw0/decomp/pkg/rules"
	"github.com/google/uuid"
)

// Engine evaluates rule sets against subject graphs, delegating leaf functions to a Runner.
type Engine struct {
	runner   ports.Runner
	hooks    observability.LifecycleHooks
	rootType string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks observability.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRootType changes the reserved type that selects the graph root as entry object
// (default: "Root").
func WithRootType(typ string) EngineOption {
	return func(e *Engine) {
		if typ != "" {
			e.rootType = typ
		}
	}
}

// NewEngine creates a new engine bound to a runner.
func NewEngine(runner ports.Runner, opts ...EngineOption) *Engine {
	e := &Engine{
		runner:   runner,
		rootType: model.TypeRoot,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewContext binds a rule set and a subject graph for one transformation.
func (e *Engine) NewContext(rs *rules.RuleSet, root model.ObjectModel) (*TransformationContext, error) {
	if rs == nil {
		return nil, fmt.Errorf("rule set is required")
	}
	if e.runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	cm, err := model.Root(root)
	if err != nil {
		return nil, err
	}
	return &TransformationContext{
		RunID:    uuid.NewString(),
		rules:    rs,
		root:     cm,
		runner:   e.runner,
		hooks:    e.hooks,
		rootType: e.rootType,
	}, nil
}

// Validate checks the runner's implementations against the rule set before any evaluation.
func (e *Engine) Validate(ctx context.Context, rs *rules.RuleSet) ([]error, error) {
	if rs == nil {
		return nil, fmt.Errorf("rule set is required")
	}
	return e.runner.ValidateFunctions(ctx, rs.Criteria())
}
