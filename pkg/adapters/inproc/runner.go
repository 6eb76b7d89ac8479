// Package inproc implements a ports.Runner backed by a table of Go functions.
package inproc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/ports"
)

// Language tags frames raised by functions of this runner.
const Language = "go"

// Func is the signature of a leaf implementation. args are the link values, in order.
type Func func(ctx context.Context, args []any) (any, error)

// Function is a leaf implementation together with its declared parameter names.
type Function struct {
	Params []string
	Fn     Func
}

// Runner manages the available leaf functions.
type Runner struct {
	mu     sync.RWMutex
	funcs  map[string]Function
	closed bool
}

// New creates a new empty runner.
func New() *Runner {
	return &Runner{
		funcs: make(map[string]Function),
	}
}

// Register adds a function to the table under its canonical name (Type_name).
// If a function with the same name exists, it is overwritten.
func (r *Runner) Register(name string, params []string, fn Func) *Runner {
	return r.RegisterFunction(name, Function{Params: params, Fn: fn})
}

// RegisterFunction is Register for a prepared Function.
func (r *Runner) RegisterFunction(name string, f Function) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = f
	return r
}

func (r *Runner) lookup(name string) (Function, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return Function{}, false, ports.ErrRunnerClosed
	}
	f, ok := r.funcs[name]
	return f, ok, nil
}

// HasFunction is a table lookup.
func (r *Runner) HasFunction(_ context.Context, name string) (bool, error) {
	_, ok, err := r.lookup(name)
	return ok, err
}

// CallFunction invokes name synchronously. Returned errors and panics are
// reported as *ports.FunctionError.
func (r *Runner) CallFunction(ctx context.Context, name string, args []any) (out any, err error) {
	f, ok, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if !ok || f.Fn == nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrMissingFunction, name)
	}

	defer func() {
		if p := recover(); p != nil {
			// skip the deferred closure and the runtime panic machinery
			err = &ports.FunctionError{
				Function: name,
				Message:  fmt.Sprintf("panic: %v", p),
				Language: Language,
				Stack:    diag.CallerLocations(2),
			}
			out = nil
		}
	}()

	out, err = f.Fn(ctx, args)
	if err != nil {
		var fe *ports.FunctionError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &ports.FunctionError{
			Function: name,
			Message:  err.Error(),
			Language: Language,
			Stack:    []diag.Location{diag.FuncLocation(f.Fn)},
			Err:      err,
		}
	}
	return out, nil
}

// ValidateFunctions compares each implementation's declared parameter names with the
// link-derived ones. Mismatches are reported, never raised.
func (r *Runner) ValidateFunctions(_ context.Context, criteria []ports.FunctionCriteria) ([]error, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ports.ErrRunnerClosed
	}

	var errs []error
	for _, c := range criteria {
		f, ok := r.funcs[c.FunctionName]
		if !ok {
			if !c.Optional {
				errs = append(errs, &ports.ValidationError{
					QualifiedName: c.QualifiedName,
					Reason:        fmt.Sprintf("no implementation named %s", c.FunctionName),
				})
			}
			continue
		}
		if reason := compareParams(f.Params, c.Parameters); reason != "" {
			errs = append(errs, &ports.ValidationError{QualifiedName: c.QualifiedName, Reason: reason})
		}
	}
	return errs, nil
}

func compareParams(declared, expected []string) string {
	if slices.Equal(declared, expected) {
		return ""
	}
	if len(declared) != len(expected) {
		return fmt.Sprintf("expects %d parameters (%s) but the implementation declares %d (%s)",
			len(expected), strings.Join(expected, ", "), len(declared), strings.Join(declared, ", "))
	}
	return fmt.Sprintf("parameter names differ: expected (%s), declared (%s)",
		strings.Join(expected, ", "), strings.Join(declared, ", "))
}

// ExceptionToStackFrame converts a CallFunction failure into an external frame.
func (r *Runner) ExceptionToStackFrame(err error) diag.StackFrame {
	return ports.FrameFromError(err, "", Language)
}

// Finalize drops the function table. It is idempotent.
func (r *Runner) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.funcs = nil
	return nil
}
