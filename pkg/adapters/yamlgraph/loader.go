// Package yamlgraph loads subject graphs from YAML or JSON text, remembering where each
// object was declared so diagnostics can point into the document.
//
// The document layout is the one memory.FromValue accepts: mappings are objects, "$type"
// and "$id" name them, a mapping holding only "$ref" refers to another object, and
// sequences hold children or plain values. Unlike FromValue, features keep document order.
package yamlgraph

import (
	"fmt"
	"os"

	"github.com/aretw0/decomp/pkg/adapters/memory"
	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/model"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a subject document from disk.
func LoadFile(path string) (*memory.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subject: %w", err)
	}
	return Load(path, data)
}

// Load parses a subject document. filename is only used in locations.
func Load(filename string, data []byte) (*memory.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	body := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		body = doc.Content[0]
	}
	if body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: subject document must be a mapping", filename)
	}

	l := &loader{filename: filename, b: memory.NewBuilder()}
	rootID, err := l.object(body, model.TypeRoot)
	if err != nil {
		return nil, err
	}
	root, err := l.b.Build(rootID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return root, nil
}

type loader struct {
	filename string
	b        *memory.Builder
}

func (l *loader) errorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s: %s", l.location(n), fmt.Sprintf(format, args...))
}

func (l *loader) location(n *yaml.Node) diag.Location {
	last := n
	for len(last.Content) > 0 {
		last = last.Content[len(last.Content)-1]
	}
	return diag.Location{
		Filename:  l.filename,
		StartLine: n.Line,
		StartCol:  n.Column,
		EndLine:   last.Line,
		EndCol:    last.Column + len(last.Value),
	}
}

func (l *loader) object(n *yaml.Node, defaultType string) (string, error) {
	typ, id := defaultType, ""
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		switch key.Value {
		case memory.KeyType:
			typ = value.Value
		case memory.KeyID:
			id = value.Value
		}
	}
	if id == "" {
		id = l.b.NextID("n")
	}
	nb := l.b.Object(id, typ).At(l.location(n))

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Value == memory.KeyType || key.Value == memory.KeyID {
			continue
		}
		if err := l.feature(nb, key.Value, value); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (l *loader) feature(nb *memory.NodeBuilder, name string, n *yaml.Node) error {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		id, err := l.child(n)
		if err != nil {
			return err
		}
		if name == model.FeatureCont {
			nb.Contains(id)
			break
		}
		nb.Ref(name, id)
	case yaml.SequenceNode:
		ids := make([]string, 0, len(n.Content))
		for _, elem := range n.Content {
			elem = resolveAlias(elem)
			var (
				id  string
				err error
			)
			switch elem.Kind {
			case yaml.MappingNode:
				id, err = l.child(elem)
			case yaml.ScalarNode:
				id, err = l.scalar(elem)
			default:
				err = l.errorf(elem, "nested sequences are not supported")
			}
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		if name == model.FeatureCont {
			nb.Contains(ids...)
			break
		}
		nb.Refs(name, ids...)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return l.errorf(n, "%s: %v", name, err)
		}
		nb.Attr(name, v)
	default:
		return l.errorf(n, "unsupported value for %s", name)
	}
	return nil
}

func (l *loader) child(n *yaml.Node) (string, error) {
	if len(n.Content) == 2 && n.Content[0].Value == memory.KeyRef {
		ref := n.Content[1]
		if ref.Kind != yaml.ScalarNode || ref.Value == "" {
			return "", l.errorf(ref, "%s must name an id", memory.KeyRef)
		}
		return ref.Value, nil
	}
	return l.object(n, model.TypeObject)
}

func (l *loader) scalar(n *yaml.Node) (string, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return "", l.errorf(n, "%v", err)
	}
	id := l.b.NextID("s")
	l.b.Scalar(id, memory.ScalarType(v), v).At(l.location(n))
	return id, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
