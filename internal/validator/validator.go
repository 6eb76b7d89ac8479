// Package validator performs static checks on a rule set, without a runner or a subject.
package validator

import (
	"fmt"

	"github.com/aretw0/decomp/pkg/rules"
)

// Unreachable returns the decompositions no chain of links leads to from the entry.
// Such rules are never evaluated and usually point at a misspelled link.
func Unreachable(rs *rules.RuleSet) []*rules.Decomposition {
	entry, ok := rs.First()
	if !ok {
		return nil
	}

	visited := map[rules.QualifiedName]bool{entry.Function: true}
	queue := []*rules.Decomposition{entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, l := range current.Links {
			for _, target := range rs.Targets(current, l) {
				if visited[target] {
					continue
				}
				// Undeclared targets are leaves or attributes, not rules.
				next, ok := rs.Lookup(target)
				if !ok {
					continue
				}
				visited[target] = true
				queue = append(queue, next)
			}
		}
	}

	var out []*rules.Decomposition
	for _, d := range rs.Decompositions() {
		if !visited[d.Function] {
			out = append(out, d)
		}
	}
	return out
}

// Lint reports static problems in rs as human-readable warnings.
func Lint(rs *rules.RuleSet) []string {
	var warnings []string
	for _, d := range Unreachable(rs) {
		warnings = append(warnings, fmt.Sprintf("%s (%s) is unreachable from the entry decomposition", d.Function, d.Range))
	}
	return warnings
}
