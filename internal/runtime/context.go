package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/observability"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/aretw0/decomp/pkg/rules"
)

// TransformationContext binds one rule set, one root and one runner for the duration
// of a single transformation. It owns the diagnostic stack and is not reusable.
type TransformationContext struct {
	RunID string

	rules    *rules.RuleSet
	root     model.CenteredModel
	runner   ports.Runner
	hooks    observability.LifecycleHooks
	rootType string
	stack    diag.Stack
	done     bool
}

// Transform is a shortcut for NewContext, Transform and Finalize.
func (e *Engine) Transform(ctx context.Context, rs *rules.RuleSet, root model.ObjectModel) (any, error) {
	tc, err := e.NewContext(rs, root)
	if err != nil {
		return nil, err
	}
	defer tc.Finalize()
	return tc.Transform(ctx)
}

// Transform evaluates the entry decomposition. Failures are returned as *diag.TransformError
// carrying the diagnostic stack at the moment of failure.
func (tc *TransformationContext) Transform(ctx context.Context) (any, error) {
	if tc.done {
		return nil, errors.New("transformation context already finalized")
	}
	entry, ok := tc.rules.First()
	if !ok {
		return nil, &diag.TransformError{Err: ports.ErrEmptyRuleSet}
	}

	target, err := tc.entryModel(entry)
	if err != nil {
		return nil, &diag.TransformError{Err: err}
	}

	v, err := tc.evaluate(ctx, entry, target)
	if err != nil {
		return nil, &diag.TransformError{Frames: tc.stack.Frames(), Err: err}
	}
	return v, nil
}

// Stack returns the current diagnostic stack, outermost first.
func (tc *TransformationContext) Stack() []diag.StackFrame {
	return tc.stack.Frames()
}

// Finalize ends the runner session scoped to this transformation. It is idempotent.
func (tc *TransformationContext) Finalize() {
	if tc.done {
		return
	}
	tc.done = true
	tc.stack.Reset()
	if s, ok := tc.runner.(ports.SessionScoped); ok {
		s.EndSession()
	}
}

// entryModel picks the object the entry decomposition is evaluated on: the root itself
// for the reserved root type, otherwise the single contained child of that type.
func (tc *TransformationContext) entryModel(entry *rules.Decomposition) (model.CenteredModel, error) {
	typ := entry.Function.Type
	if typ == tc.rootType {
		return tc.root, nil
	}
	candidates := tc.root.Successors(model.FeatureCont, typ)
	switch len(candidates) {
	case 0:
		return model.CenteredModel{}, fmt.Errorf("%w: no contained object of type %s", ports.ErrEntryNotFound, typ)
	case 1:
		return candidates[0], nil
	default:
		return model.CenteredModel{}, fmt.Errorf("%w: %d contained objects of type %s", ports.ErrAmbiguousEntry, len(candidates), typ)
	}
}

func (tc *TransformationContext) emitEnter(ctx context.Context, d *rules.Decomposition, cm model.CenteredModel) {
	if tc.hooks.OnDecompositionEnter == nil {
		return
	}
	tc.hooks.OnDecompositionEnter(ctx, &observability.DecompositionEvent{
		EventBase: tc.event(observability.EventDecompositionEnter),
		Function:  d.Function.String(),
		SubjectID: cm.ID(),
		Subject:   cm.Type(),
	})
}

func (tc *TransformationContext) emitLeave(ctx context.Context, d *rules.Decomposition, cm model.CenteredModel, err error) {
	if tc.hooks.OnDecompositionLeave == nil {
		return
	}
	tc.hooks.OnDecompositionLeave(ctx, &observability.DecompositionEvent{
		EventBase: tc.event(observability.EventDecompositionLeave),
		Function:  d.Function.String(),
		SubjectID: cm.ID(),
		Subject:   cm.Type(),
		IsError:   err != nil,
	})
}

func (tc *TransformationContext) emitCall(ctx context.Context, name string, args int) {
	if tc.hooks.OnFunctionCall == nil {
		return
	}
	tc.hooks.OnFunctionCall(ctx, &observability.FunctionEvent{
		EventBase: tc.event(observability.EventFunctionCall),
		Function:  name,
		Args:      args,
	})
}

func (tc *TransformationContext) emitReturn(ctx context.Context, name string, args int, took time.Duration, err error) {
	if tc.hooks.OnFunctionReturn == nil {
		return
	}
	tc.hooks.OnFunctionReturn(ctx, &observability.FunctionEvent{
		EventBase: tc.event(observability.EventFunctionReturn),
		Function:  name,
		Args:      args,
		Duration:  took,
		IsError:   err != nil,
	})
}

func (tc *TransformationContext) event(typ observability.EventType) observability.EventBase {
	return observability.EventBase{Timestamp: time.Now(), Type: typ, RunID: tc.RunID}
}
