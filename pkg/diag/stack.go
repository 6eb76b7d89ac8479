package diag

import (
	"strings"
)

// Stack is the explicit call stack of one evaluation.
// It is owned by a single transformation and is not safe for concurrent use.
type Stack struct {
	frames []*StackFrame
}

// Push records a new innermost frame and returns it so the caller can
// attach late-bound context (such as the currently visited subject).
func (s *Stack) Push(f StackFrame) *StackFrame {
	frame := &f
	s.frames = append(s.frames, frame)
	return frame
}

// Pop removes the innermost frame. It is called only when a step returns normally.
func (s *Stack) Pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
}

// Len returns the current depth.
func (s *Stack) Len() int {
	return len(s.frames)
}

// Frames returns a snapshot of the stack, outermost first.
func (s *Stack) Frames() []StackFrame {
	out := make([]StackFrame, len(s.frames))
	for i, f := range s.frames {
		out[i] = *f
	}
	return out
}

// Reset drops every frame.
func (s *Stack) Reset() {
	s.frames = nil
}

// Render formats frames outermost first, one entry per line.
func Render(frames []StackFrame) string {
	lines := make([]string, 0, len(frames))
	for _, f := range frames {
		lines = append(lines, f.String())
	}
	return strings.Join(lines, "\n")
}
