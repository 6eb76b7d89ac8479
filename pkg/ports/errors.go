package ports

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/decomp/pkg/diag"
)

var (
	// ErrMissingFunction is returned when a decomposition with links has no leaf implementation.
	ErrMissingFunction = errors.New("missing leaf implementation")

	// ErrEntryNotFound is returned when no object matches the entry decomposition's type.
	ErrEntryNotFound = errors.New("entry object not found")

	// ErrAmbiguousEntry is returned when several objects match the entry decomposition's type.
	ErrAmbiguousEntry = errors.New("ambiguous entry object")

	// ErrEmptyRuleSet is returned when a transformation has no decompositions.
	ErrEmptyRuleSet = errors.New("rule set has no decompositions")

	// ErrRunnerClosed is returned by runners used after Finalize.
	ErrRunnerClosed = errors.New("runner finalized")
)

// FunctionError is a failure raised by a leaf function itself (a user-code bug).
type FunctionError struct {
	Function string
	Message  string
	// Language names the runtime the function ran in.
	Language string
	// Stack holds the locations reported by that runtime, outermost first.
	Stack []diag.Location
	Err   error
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function %s failed: %s", e.Function, e.Message)
}

func (e *FunctionError) Unwrap() error {
	return e.Err
}

// Frame renders the failure as an external stack frame.
func (e *FunctionError) Frame() diag.StackFrame {
	return diag.StackFrame{
		Kind:      diag.FrameExternal,
		Function:  e.Function,
		Language:  e.Language,
		Message:   e.Message,
		Locations: append([]diag.Location(nil), e.Stack...),
	}
}

// ProtocolError means the channel to a worker is broken: it closed unexpectedly,
// carried a malformed message, or referenced an unknown object.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol failure during %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ConfigurationError is raised before any call when a worker cannot be used.
// It is never retried.
type ConfigurationError struct {
	Reason  string
	Version string
}

func (e *ConfigurationError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("invalid runner configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid runner configuration: %s (found %s)", e.Reason, e.Version)
}

// ValidationError reports one implementation that does not match its decomposition.
type ValidationError struct {
	QualifiedName string `json:"decompositionQualifiedName"`
	Reason        string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.QualifiedName, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// FrameFromError converts any runner failure into an external frame.
// Function errors keep their reported locations; anything else becomes a bare frame.
func FrameFromError(err error, function, language string) diag.StackFrame {
	var fe *FunctionError
	if errors.As(err, &fe) {
		frame := fe.Frame()
		if frame.Language == "" {
			frame.Language = language
		}
		return frame
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return diag.StackFrame{
		Kind:     diag.FrameExternal,
		Function: function,
		Language: language,
		Message:  msg,
	}
}
