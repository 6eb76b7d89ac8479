package diag

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Location is a source range. Lines and columns are 1-based; zero means unknown.
type Location struct {
	Filename  string `json:"filename" yaml:"filename"`
	StartLine int    `json:"startLine" yaml:"startLine"`
	StartCol  int    `json:"startCol" yaml:"startCol"`
	EndLine   int    `json:"endLine" yaml:"endLine"`
	EndCol    int    `json:"endCol" yaml:"endCol"`
}

// IsZero reports whether the location carries no information at all.
func (l Location) IsZero() bool {
	return l == Location{}
}

// String renders the location as file:line:col, adding the end position when it differs.
func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	name := l.Filename
	if name == "" {
		name = "<input>"
	}
	if l.StartLine == 0 {
		return name
	}
	start := fmt.Sprintf("%s:%d:%d", name, l.StartLine, l.StartCol)
	if l.EndLine == 0 || (l.EndLine == l.StartLine && l.EndCol == l.StartCol) {
		return start
	}
	if l.EndLine == l.StartLine {
		return fmt.Sprintf("%s-%d", start, l.EndCol)
	}
	return fmt.Sprintf("%s-%d:%d", start, l.EndLine, l.EndCol)
}

// Subject is the part of a subject-graph node a frame needs to describe it.
type Subject interface {
	ID() string
	Type() string
}

// Located is implemented by subject nodes that know where they were read from.
type Located interface {
	Location() Location
}

// FuncLocation returns the declaration site of a Go function value.
// It returns the zero Location for anything that is not a function.
func FuncLocation(fn any) Location {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Location{}
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return Location{}
	}
	file, line := f.FileLine(f.Entry())
	return Location{Filename: file, StartLine: line, StartCol: 1, EndLine: line, EndCol: 1}
}

// CallerLocations converts the goroutine's current call stack into locations,
// skipping the given number of frames. Runtime-internal frames are dropped.
func CallerLocations(skip int) []Location {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var out []Location
	for {
		frame, more := frames.Next()
		if frame.File != "" && !isRuntimeFrame(frame.Function) {
			out = append(out, Location{
				Filename:  frame.File,
				StartLine: frame.Line,
				StartCol:  1,
				EndLine:   frame.Line,
				EndCol:    1,
			})
		}
		if !more {
			break
		}
	}
	return out
}

func isRuntimeFrame(function string) bool {
	return strings.HasPrefix(function, "runtime.")
}
