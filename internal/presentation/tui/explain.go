package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/decomp/internal/presentation/graph"
	"github.com/aretw0/decomp/pkg/rules"
)

// Explain describes a rule set as markdown: one section per decomposition, in
// declaration order, with its leaf function signature and a dependency diagram.
func Explain(rs *rules.RuleSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", rs.Source())

	ds := rs.Decompositions()
	if len(ds) == 0 {
		sb.WriteString("_No decompositions._\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "%d decomposition(s). Entry: `%s`.\n\n", len(ds), ds[0].Function)

	for _, d := range ds {
		fmt.Fprintf(&sb, "## %s\n\n", d.Function)
		if d.Comment != "" {
			fmt.Fprintf(&sb, "%s\n\n", d.Comment)
		}
		if len(d.Links) == 0 {
			fmt.Fprintf(&sb, "Calls `%s()` when available, otherwise reads the `%s` attribute.\n\n", d.Function.Canonical(), d.Function.Name)
			continue
		}
		fmt.Fprintf(&sb, "Calls `%s(%s)`.\n\n", d.Function.Canonical(), strings.Join(d.ParameterNames(), ", "))
		sb.WriteString("| Parameter | Kind | Link | Source |\n|---|---|---|---|\n")
		for _, l := range d.Links {
			src := ""
			if !l.Range.IsZero() {
				src = l.Range.String()
			}
			fmt.Fprintf(&sb, "| %s | %s | `%s` | %s |\n", l.ParameterName, l.Kind, l, src)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Dependencies\n\n```mermaid\n")
	sb.WriteString(graph.GenerateMermaid(rs, nil))
	sb.WriteString("```\n")
	return sb.String()
}
