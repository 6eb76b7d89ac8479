package memory

import (
	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/model"
)

type featureKind int

const (
	featureAttr featureKind = iota
	featureRef
	featureRefs
)

type feature struct {
	kind  featureKind
	value any
	ids   []string
}

// Graph is an arena owning every node of one loaded subject graph.
// Nodes refer to each other by id; the arena resolves them on access.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Node implements model.ObjectModel. It is immutable once its graph is built.
type Node struct {
	graph    *Graph
	id       string
	typ      string
	scalar   bool
	val      any
	names    []string
	features map[string]*feature
	loc      diag.Location
}

var (
	_ model.ObjectModel = (*Node)(nil)
	_ diag.Located      = (*Node)(nil)
)

func (n *Node) ID() string { return n.id }
func (n *Node) Type() string { return n.typ }
func (n *Node) IsScalar() bool { return n.scalar }
func (n *Node) Graph() *Graph { return n.graph }

// Val returns the scalar payload, or nil for non-scalar nodes.
func (n *Node) Val() any {
	if !n.scalar {
		return nil
	}
	return n.val
}

// Location returns where the node was read from, if known.
func (n *Node) Location() diag.Location { return n.loc }

// FeatureNames returns the feature names in declaration order.
func (n *Node) FeatureNames() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Feature resolves a feature. References always resolve to the arena's node,
// so repeated calls return the same instance.
func (n *Node) Feature(name string) any {
	f, ok := n.features[name]
	if !ok {
		return nil
	}
	switch f.kind {
	case featureRef:
		return n.graph.nodes[f.ids[0]]
	case featureRefs:
		out := make([]model.ObjectModel, 0, len(f.ids))
		for _, id := range f.ids {
			out = append(out, n.graph.nodes[id])
		}
		return out
	default:
		return f.value
	}
}

// FeatureAsArray implements model.ObjectModel.
func (n *Node) FeatureAsArray(name string) []model.ObjectModel {
	return model.AsArray(n.Feature(name))
}
