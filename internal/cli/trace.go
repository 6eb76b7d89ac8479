package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Palette used for traces.
const (
	colorError    = "#f87171"
	colorFrame    = "#818cf8"
	colorExternal = "#fb923c"
	colorDim      = "#9ca3af"
)

// ColorEnabled resolves the color mode for the given output.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintError writes err to w. Transformation failures are printed with their trace,
// outermost frame first; validation failures one per line.
func PrintError(w io.Writer, err error, color bool) {
	p := termenv.Ascii
	if color {
		p = termenv.TrueColor
	}
	paint := func(s, hex string) string {
		return p.String(s).Foreground(p.Color(hex)).String()
	}

	var te *diag.TransformError
	if errors.As(err, &te) {
		fmt.Fprintln(w, paint("transformation failed: "+te.Err.Error(), colorError))
		for i, f := range te.Frames {
			line := f.String()
			switch {
			case f.Kind == diag.FrameExternal:
				line = paint(line, colorExternal)
			case i == len(te.Frames)-1:
				line = paint(line, colorFrame)
			default:
				line = paint(line, colorDim)
			}
			fmt.Fprintf(w, "  %s\n", line)
		}
		return
	}

	var agg *ports.AggregateError
	if errors.As(err, &agg) {
		fmt.Fprintln(w, paint(fmt.Sprintf("%d function(s) do not match the rules:", len(agg.Errors)), colorError))
		for _, e := range agg.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return
	}

	fmt.Fprintln(w, paint("error: "+err.Error(), colorError))
}
