package memory

import (
	"errors"
	"fmt"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/model"
)

// ErrDanglingReference is returned by Build when a reference names an unknown node.
var ErrDanglingReference = errors.New("dangling reference")

// Builder assembles a Graph. References may name nodes declared later;
// they are checked when the graph is built.
type Builder struct {
	graph *Graph
	errs  []error
	seq   int
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		graph: &Graph{nodes: make(map[string]*Node)},
	}
}

// NextID returns a fresh id with the given prefix that is not used yet.
func (b *Builder) NextID(prefix string) string {
	for {
		b.seq++
		id := fmt.Sprintf("%s%d", prefix, b.seq)
		if _, taken := b.graph.nodes[id]; !taken {
			return id
		}
	}
}

// Object declares a non-scalar node.
func (b *Builder) Object(id, typ string) *NodeBuilder {
	return b.add(&Node{id: id, typ: typ})
}

// Scalar declares a scalar node carrying val.
func (b *Builder) Scalar(id, typ string, val any) *NodeBuilder {
	return b.add(&Node{id: id, typ: typ, scalar: true, val: val})
}

func (b *Builder) add(n *Node) *NodeBuilder {
	n.graph = b.graph
	n.features = make(map[string]*feature)
	if n.id == "" {
		b.errs = append(b.errs, fmt.Errorf("node of type %q has no id", n.typ))
	} else if _, dup := b.graph.nodes[n.id]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate node id %q", n.id))
	} else {
		b.graph.nodes[n.id] = n
		b.graph.order = append(b.graph.order, n.id)
	}
	return &NodeBuilder{node: n, builder: b}
}

// Build checks every reference and returns the root node.
func (b *Builder) Build(rootID string) (*Node, error) {
	errs := append([]error(nil), b.errs...)
	for _, id := range b.graph.order {
		n := b.graph.nodes[id]
		for _, name := range n.names {
			for _, ref := range n.features[name].ids {
				if _, ok := b.graph.nodes[ref]; !ok {
					errs = append(errs, fmt.Errorf("%w: %s.%s -> %q", ErrDanglingReference, id, name, ref))
				}
			}
		}
	}
	root, ok := b.graph.nodes[rootID]
	if !ok {
		errs = append(errs, fmt.Errorf("root node %q not declared", rootID))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return root, nil
}

// NodeBuilder configures one node.
type NodeBuilder struct {
	node    *Node
	builder *Builder
}

// ID returns the id of the node being built.
func (nb *NodeBuilder) ID() string { return nb.node.id }

// Attr sets a scalar attribute.
func (nb *NodeBuilder) Attr(name string, value any) *NodeBuilder {
	nb.set(name, &feature{kind: featureAttr, value: value})
	return nb
}

// Ref sets a single-valued reference.
func (nb *NodeBuilder) Ref(name, id string) *NodeBuilder {
	nb.set(name, &feature{kind: featureRef, ids: []string{id}})
	return nb
}

// Refs sets a multi-valued reference. Order is preserved.
func (nb *NodeBuilder) Refs(name string, ids ...string) *NodeBuilder {
	nb.set(name, &feature{kind: featureRefs, ids: append([]string(nil), ids...)})
	return nb
}

// Contains appends contained children to the node's cont feature.
func (nb *NodeBuilder) Contains(ids ...string) *NodeBuilder {
	if len(ids) == 0 {
		return nb
	}
	if f, ok := nb.node.features[model.FeatureCont]; ok && f.kind == featureRefs {
		f.ids = append(f.ids, ids...)
		return nb
	}
	return nb.Refs(model.FeatureCont, ids...)
}

// At records the source location of the node.
func (nb *NodeBuilder) At(loc diag.Location) *NodeBuilder {
	nb.node.loc = loc
	return nb
}

func (nb *NodeBuilder) set(name string, f *feature) {
	if _, exists := nb.node.features[name]; !exists {
		nb.node.names = append(nb.node.names, name)
	}
	nb.node.features[name] = f
}
