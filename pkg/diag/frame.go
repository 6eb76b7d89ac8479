package diag

import (
	"fmt"
	"strings"
)

// FrameKind tags the evaluation step a StackFrame describes.
type FrameKind int

const (
	FrameDecomposition FrameKind = iota
	FrameLocal
	FrameGlobal
	FrameForward
	FrameReverse
	FrameExternal
)

// String returns the label used when rendering the frame.
func (k FrameKind) String() string {
	switch k {
	case FrameDecomposition:
		return "decomposition"
	case FrameLocal:
		return "local link"
	case FrameGlobal:
		return "global link"
	case FrameForward:
		return "forward link"
	case FrameReverse:
		return "reverse link"
	case FrameExternal:
		return "external function"
	default:
		return "unknown"
	}
}

// StackFrame records one in-flight evaluation step.
type StackFrame struct {
	Kind FrameKind

	// Function is the qualified decomposition name, the link expression,
	// or the canonical name of the failing external function.
	Function string

	// Source is the range in the transformation source the step belongs to.
	Source Location

	// Subject is the object being centered on. Links that iterate over
	// several objects rebind it to the one currently visited.
	Subject Subject

	// External frames only.
	Language  string
	Message   string
	Locations []Location
}

// String renders the frame as one line, plus one indented line per external location.
func (f StackFrame) String() string {
	var b strings.Builder
	if f.Kind == FrameExternal {
		lang := f.Language
		if lang == "" {
			lang = "external"
		}
		fmt.Fprintf(&b, "%s function %s failed", lang, f.Function)
		if f.Message != "" {
			fmt.Fprintf(&b, ": %s", f.Message)
		}
		for _, loc := range f.Locations {
			fmt.Fprintf(&b, "\n    at %s", loc)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "in %s %s", f.Kind, f.Function)
	if !f.Source.IsZero() {
		fmt.Fprintf(&b, " (%s)", f.Source)
	}
	if f.Subject != nil {
		fmt.Fprintf(&b, " on %s#%s", f.Subject.Type(), f.Subject.ID())
		if l, ok := f.Subject.(Located); ok {
			if loc := l.Location(); !loc.IsZero() {
				fmt.Fprintf(&b, " (%s)", loc)
			}
		}
	}
	return b.String()
}
