package diag

import "fmt"

// TransformError is returned when a transformation aborts.
// Frames holds the diagnostic stack at the moment of failure, outermost first.
type TransformError struct {
	Frames []StackFrame
	Err    error
}

func (e *TransformError) Error() string {
	if len(e.Frames) == 0 {
		return fmt.Sprintf("transformation failed: %v", e.Err)
	}
	return fmt.Sprintf("transformation failed: %v\n%s", e.Err, Render(e.Frames))
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// Innermost returns the frame closest to the failure.
func (e *TransformError) Innermost() (StackFrame, bool) {
	if len(e.Frames) == 0 {
		return StackFrame{}, false
	}
	return e.Frames[len(e.Frames)-1], true
}

// Outermost returns the frame of the entry decomposition.
func (e *TransformError) Outermost() (StackFrame, bool) {
	if len(e.Frames) == 0 {
		return StackFrame{}, false
	}
	return e.Frames[0], true
}
