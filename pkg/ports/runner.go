package ports

import (
	"context"

	"github.com/aretw0/decomp/pkg/diag"
)

// FunctionCriteria describes one leaf function a rule set expects an implementation for.
type FunctionCriteria struct {
	// FunctionName is the canonical name (Type_name) the implementation is looked up by.
	FunctionName string `json:"functionName" yaml:"functionName"`
	// Parameters are the link-derived parameter names, in positional order.
	Parameters []string `json:"parameters" yaml:"parameters"`
	// QualifiedName is the decomposition's Type.name signature, used in reports.
	QualifiedName string `json:"decompositionQualifiedName" yaml:"decompositionQualifiedName"`
	// Optional marks decompositions without links: they fall back to attribute access.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Runner executes leaf functions on behalf of the engine.
type Runner interface {
	// HasFunction reports whether an implementation named name exists.
	HasFunction(ctx context.Context, name string) (bool, error)

	// CallFunction invokes name with positional arguments.
	// Failures of the function itself are returned as *FunctionError.
	CallFunction(ctx context.Context, name string, args []any) (any, error)

	// ValidateFunctions checks implementations against the expected criteria.
	// Mismatches are returned as a list; the error is reserved for runner failures.
	ValidateFunctions(ctx context.Context, criteria []FunctionCriteria) ([]error, error)

	// ExceptionToStackFrame converts a failure returned by CallFunction into a frame.
	ExceptionToStackFrame(err error) diag.StackFrame

	// Finalize releases resources. It is idempotent.
	Finalize() error
}

// SessionScoped is implemented by runners holding state that must not outlive
// one transformation, such as an object identity table.
type SessionScoped interface {
	EndSession()
}
