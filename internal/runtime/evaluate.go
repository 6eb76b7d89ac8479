package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/aretw0/decomp/pkg/rules"
)

// signature computes the (type, name) a function reference resolves against.
//
// Untyped references (local links) use the enclosing decomposition's own type.
// References typed with the Object wildcard use the runtime type of the object reached.
// Any other typed reference is resolved statically against its declared type.
func signature(ref rules.FunctionRef, enclosing *rules.Decomposition, cm model.CenteredModel) rules.QualifiedName {
	switch {
	case !ref.Typed():
		return rules.QualifiedName{Type: enclosing.Function.Type, Name: ref.Name}
	case ref.Wildcard():
		return rules.QualifiedName{Type: cm.Type(), Name: ref.Name}
	default:
		return rules.QualifiedName{Type: ref.Type, Name: ref.Name}
	}
}

// Resolve returns the decomposition answering ref on cm, if any. A miss is not an error.
func (tc *TransformationContext) Resolve(ref rules.FunctionRef, enclosing *rules.Decomposition, cm model.CenteredModel) (*rules.Decomposition, bool) {
	return tc.rules.Lookup(signature(ref, enclosing, cm))
}

// evaluateRef resolves ref on cm and evaluates it. On a resolution miss it falls back to a
// zero-argument leaf function with the resolved canonical name, then to raw attribute access.
func (tc *TransformationContext) evaluateRef(ctx context.Context, enclosing *rules.Decomposition, ref rules.FunctionRef, cm model.CenteredModel) (any, error) {
	q := signature(ref, enclosing, cm)
	if d, ok := tc.rules.Lookup(q); ok {
		return tc.evaluate(ctx, d, cm)
	}
	name := q.Canonical()
	has, err := tc.runner.HasFunction(ctx, name)
	if err != nil {
		return nil, err
	}
	if has {
		return tc.call(ctx, name, nil)
	}
	return cm.Feature(ref.Name), nil
}

func (tc *TransformationContext) evaluate(ctx context.Context, d *rules.Decomposition, cm model.CenteredModel) (any, error) {
	tc.stack.Push(diag.StackFrame{
		Kind:     diag.FrameDecomposition,
		Function: d.Function.String(),
		Source:   d.Range,
		Subject:  cm.Center(),
	})
	tc.emitEnter(ctx, d, cm)

	v, err := tc.evaluateBody(ctx, d, cm)
	tc.emitLeave(ctx, d, cm, err)
	if err != nil {
		return nil, err
	}
	tc.stack.Pop()
	return v, nil
}

func (tc *TransformationContext) evaluateBody(ctx context.Context, d *rules.Decomposition, cm model.CenteredModel) (any, error) {
	name := d.Function.Canonical()

	if len(d.Links) == 0 {
		has, err := tc.runner.HasFunction(ctx, name)
		if err != nil {
			return nil, err
		}
		if has {
			return tc.call(ctx, name, nil)
		}
		return cm.Feature(d.Function.Name), nil
	}

	args := make([]any, 0, len(d.Links))
	for _, l := range d.Links {
		v, err := tc.linkValue(ctx, d, l, cm)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	has, err := tc.runner.HasFunction(ctx, name)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("%w: %s", ports.ErrMissingFunction, name)
	}
	return tc.call(ctx, name, args)
}

func frameKind(k rules.LinkKind) diag.FrameKind {
	switch k {
	case rules.LinkGlobal:
		return diag.FrameGlobal
	case rules.LinkForward:
		return diag.FrameForward
	case rules.LinkReverse:
		return diag.FrameReverse
	default:
		return diag.FrameLocal
	}
}

// linkValue computes one link of d on cm.
// Global and forward links produce ordered slices; reverse links produce a *model.Set.
func (tc *TransformationContext) linkValue(ctx context.Context, d *rules.Decomposition, l rules.Link, cm model.CenteredModel) (any, error) {
	frame := tc.stack.Push(diag.StackFrame{
		Kind:     frameKind(l.Kind),
		Function: l.String(),
		Source:   l.Range,
		Subject:  cm.Center(),
	})

	var (
		v   any
		err error
	)
	switch l.Kind {
	case rules.LinkLocal:
		v, err = tc.evaluateRef(ctx, d, l.Function, cm)

	case rules.LinkGlobal, rules.LinkForward:
		var targets []model.CenteredModel
		if l.Kind == rules.LinkGlobal {
			targets = cm.OfType(l.Function.Type)
		} else {
			targets = cm.Successors(l.RefName, l.Function.Type)
		}
		out := make([]any, 0, len(targets))
		for _, target := range targets {
			frame.Subject = target.Center()
			var x any
			if x, err = tc.evaluateRef(ctx, d, l.Function, target); err != nil {
				break
			}
			out = append(out, x)
		}
		v = out

	case rules.LinkReverse:
		set := model.NewSet()
		for _, source := range cm.Predecessors(l.RefName, l.Function.Type) {
			frame.Subject = source.Center()
			var x any
			if x, err = tc.evaluateRef(ctx, d, l.Function, source); err != nil {
				break
			}
			set.Add(x)
		}
		v = set

	default:
		err = fmt.Errorf("unknown link kind %d", l.Kind)
	}

	if err != nil {
		return nil, err
	}
	tc.stack.Pop()
	return v, nil
}

// call invokes a leaf function. Failures raised by the function itself are converted to a
// frame and left on the stack; broken channels and cancellations are returned as they are.
func (tc *TransformationContext) call(ctx context.Context, name string, args []any) (any, error) {
	tc.emitCall(ctx, name, len(args))
	start := time.Now()
	out, err := tc.runner.CallFunction(ctx, name, args)
	tc.emitReturn(ctx, name, len(args), time.Since(start), err)
	if err != nil {
		var fe *ports.FunctionError
		if errors.As(err, &fe) {
			tc.stack.Push(tc.runner.ExceptionToStackFrame(err))
		}
		return nil, err
	}
	return out, nil
}
