package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/rules"
)

// GraphOverlay contains evaluation data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromError marks the decompositions on a failed evaluation's stack.
// The innermost one becomes the current node. It returns nil when err carries no trace.
func OverlayFromError(te *diag.TransformError) *GraphOverlay {
	if te == nil || len(te.Frames) == 0 {
		return nil
	}
	o := &GraphOverlay{}
	for _, f := range te.Frames {
		if f.Kind == diag.FrameDecomposition {
			o.VisitedNodes = append(o.VisitedNodes, f.Function)
			o.CurrentNode = f.Function
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the dependencies between decompositions.
// It applies semantic styling:
// - Entry: ((Circle))
// - No links (leaf or attribute): [[Subroutine]]
// - Undeclared target (leaf function or attribute fallback): ([Stadium])
// - Default: [Rectangle]
// Forward links are solid labeled arrows, reverse links dotted, global links thick.
func GenerateMermaid(rs *rules.RuleSet, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ds := rs.Decompositions()
	undeclared := make(map[string]bool)
	var undeclaredOrder []string

	for i, d := range ds {
		name := d.Function.String()
		safeID := sanitizeMermaidID(name)

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case len(d.Links) == 0:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, name, closer))

		for _, l := range d.Links {
			for _, target := range rs.Targets(d, l) {
				if _, ok := rs.Lookup(target); !ok && !undeclared[target.String()] {
					undeclared[target.String()] = true
					undeclaredOrder = append(undeclaredOrder, target.String())
				}
				sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow(l), sanitizeMermaidID(target.String())))
			}
		}
	}

	for _, name := range undeclaredOrder {
		sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", sanitizeMermaidID(name), name))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#fecaca,stroke:#dc2626,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" && id != overlay.CurrentNode {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func arrow(l rules.Link) string {
	switch l.Kind {
	case rules.LinkForward:
		return fmt.Sprintf("-- \"%s\" -->", l.RefName)
	case rules.LinkReverse:
		return fmt.Sprintf("-. \"%s\" .->", l.RefName)
	case rules.LinkGlobal:
		return "==>"
	default:
		return "-->"
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
