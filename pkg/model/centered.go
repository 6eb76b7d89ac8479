package model

import (
	"iter"
	"slices"
)

// CenteredModel is a node viewed together with the graph it belongs to.
// It is an immutable value; every navigation step builds a fresh one.
type CenteredModel struct {
	graph  ObjectModel
	center ObjectModel
}

// NewCentered builds a CenteredModel. Both graph and center are required.
func NewCentered(graph, center ObjectModel) (CenteredModel, error) {
	if graph == nil || center == nil {
		return CenteredModel{}, ErrNilModel
	}
	return CenteredModel{graph: graph, center: center}, nil
}

// Root centers a graph on its own root node.
func Root(graph ObjectModel) (CenteredModel, error) {
	return NewCentered(graph, graph)
}

// Graph returns the root of the whole graph.
func (c CenteredModel) Graph() ObjectModel { return c.graph }

// Center returns the node this view is centered on.
func (c CenteredModel) Center() ObjectModel { return c.center }

// ID is the center's identity.
func (c CenteredModel) ID() string { return c.center.ID() }

// Type is the center's type.
func (c CenteredModel) Type() string { return c.center.Type() }

// IsZero reports whether c was never initialized.
func (c CenteredModel) IsZero() bool { return c.center == nil }

// Feature answers "center" and "val" itself and delegates anything else to the center.
func (c CenteredModel) Feature(name string) any {
	switch name {
	case FeatureCenter:
		return c.center
	case FeatureVal:
		return c.center.Val()
	default:
		return c.center.Feature(name)
	}
}

// recenter keeps the graph and moves the center.
func (c CenteredModel) recenter(center ObjectModel) CenteredModel {
	return CenteredModel{graph: c.graph, center: center}
}

// Successors follows ref from the center, keeping object values whose type matches typ.
// Source order is preserved.
func (c CenteredModel) Successors(ref, typ string) []CenteredModel {
	values := c.center.FeatureAsArray(ref)
	out := make([]CenteredModel, 0, len(values))
	for _, v := range values {
		if v == nil || !Matches(v.Type(), typ) {
			continue
		}
		out = append(out, c.recenter(v))
	}
	return out
}

// Predecessors returns every node reachable from the graph root whose ref feature
// points at the center, filtered by typ.
//
// No backward edges exist, so each call walks the whole reachable graph. The result has
// set semantics: it is deduplicated by identity and its order carries no meaning.
func (c CenteredModel) Predecessors(ref, typ string) []CenteredModel {
	target := c.center.ID()
	var out []CenteredModel
	for node := range Reachable(c.graph) {
		if !Matches(node.Type(), typ) {
			continue
		}
		if slices.ContainsFunc(node.FeatureAsArray(ref), func(v ObjectModel) bool {
			return v != nil && v.ID() == target
		}) {
			out = append(out, c.recenter(node))
		}
	}
	return out
}

// OfType returns every reachable node of the given type, in Reachable order.
func (c CenteredModel) OfType(typ string) []CenteredModel {
	var out []CenteredModel
	for node := range Reachable(c.graph) {
		if Matches(node.Type(), typ) {
			out = append(out, c.recenter(node))
		}
	}
	return out
}

// Reachable walks every node reachable from root through object-valued features.
//
// The walk is a depth-first pre-order over features in FeatureNames order, using an
// explicit stack and a visited set keyed by ID, so cycles and shared subgraphs are
// visited once. For a given graph the order is deterministic.
func Reachable(root ObjectModel) iter.Seq[ObjectModel] {
	return func(yield func(ObjectModel) bool) {
		if root == nil {
			return
		}
		visited := map[string]struct{}{}
		stack := []ObjectModel{root}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := visited[node.ID()]; seen {
				continue
			}
			visited[node.ID()] = struct{}{}
			if !yield(node) {
				return
			}

			var children []ObjectModel
			for _, name := range node.FeatureNames() {
				children = append(children, node.FeatureAsArray(name)...)
			}
			for i := len(children) - 1; i >= 0; i-- {
				child := children[i]
				if child == nil {
					continue
				}
				if _, seen := visited[child.ID()]; !seen {
					stack = append(stack, child)
				}
			}
		}
	}
}
