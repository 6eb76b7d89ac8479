package observability

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDecompositionEnter EventType = "decomposition_enter"
	EventDecompositionLeave EventType = "decomposition_leave"
	EventFunctionCall       EventType = "function_call"
	EventFunctionReturn     EventType = "function_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// DecompositionEvent represents entry or exit from a decomposition.
type DecompositionEvent struct {
	EventBase
	Function  string `json:"function"`
	SubjectID string `json:"subject_id"`
	Subject   string `json:"subject_type"`
	IsError   bool   `json:"is_error,omitempty"`
}

// FunctionEvent represents a leaf-function call.
type FunctionEvent struct {
	EventBase
	Function string        `json:"function"`
	Args     int           `json:"args"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnDecompositionEnter func(context.Context, *DecompositionEvent)
	OnDecompositionLeave func(context.Context, *DecompositionEvent)
	OnFunctionCall       func(context.Context, *FunctionEvent)
	OnFunctionReturn     func(context.Context, *FunctionEvent)
}

// Merge chains two hook sets; callbacks of h run before those of other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDecompositionEnter: chain(h.OnDecompositionEnter, other.OnDecompositionEnter),
		OnDecompositionLeave: chain(h.OnDecompositionLeave, other.OnDecompositionLeave),
		OnFunctionCall:       chain(h.OnFunctionCall, other.OnFunctionCall),
		OnFunctionReturn:     chain(h.OnFunctionReturn, other.OnFunctionReturn),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
