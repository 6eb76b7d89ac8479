package rules

import (
	"fmt"
	"os"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// document is the YAML form of a rule set.
//
//	decompositions:
//	  - function: Family.f
//	    comment: collects the sons' names
//	    links:
//	      - sons -> Member.name
//	      - expr: name
//	        param: family_name
type document struct {
	Decompositions []decompositionDoc `mapstructure:"decompositions"`
}

type decompositionDoc struct {
	Function string `mapstructure:"function"`
	Comment  string `mapstructure:"comment"`
	Links    []any  `mapstructure:"links"`
}

type linkDoc struct {
	Expr  string `mapstructure:"expr"`
	Param string `mapstructure:"param"`
}

// LoadFile reads a YAML rule set from disk.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return LoadYAML(path, data)
}

// LoadYAML parses a YAML (or JSON) rule set. filename is used for source ranges.
func LoadYAML(filename string, data []byte) (*RuleSet, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	var raw map[string]any
	if err := root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	var doc document
	if err := decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid rule set %s: %w", filename, err)
	}

	items := sequenceItems(mappingValue(documentBody(&root), "decompositions"))
	ds := make([]*Decomposition, 0, len(doc.Decompositions))
	for i, dd := range doc.Decompositions {
		var node *yaml.Node
		if i < len(items) {
			node = items[i]
		}
		d, err := dd.build(filename, node)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		ds = append(ds, d)
	}
	return NewRuleSet(filename, ds...)
}

func (dd decompositionDoc) build(filename string, node *yaml.Node) (*Decomposition, error) {
	q, err := ParseQualifiedName(dd.Function)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rangeOf(filename, node), err)
	}
	d := &Decomposition{Function: q, Comment: dd.Comment, Range: rangeOf(filename, node)}

	linkNodes := sequenceItems(mappingValue(node, "links"))
	for i, entry := range dd.Links {
		var ld linkDoc
		switch v := entry.(type) {
		case string:
			ld.Expr = v
		default:
			if err := decode(v, &ld); err != nil {
				return nil, fmt.Errorf("%s: link %d: %w", q, i, err)
			}
		}
		l, err := ParseLink(ld.Expr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", q, err)
		}
		if ld.Param != "" {
			l.ParameterName = ld.Param
		}
		if i < len(linkNodes) {
			l.Range = rangeOf(filename, linkNodes[i])
		}
		d.Links = append(d.Links, l)
	}
	return d, nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func documentBody(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func sequenceItems(n *yaml.Node) []*yaml.Node {
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n.Content
}

// rangeOf spans a node from its own position to the end of its last descendant.
func rangeOf(filename string, n *yaml.Node) diag.Location {
	if n == nil {
		return diag.Location{Filename: filename}
	}
	last := n
	for len(last.Content) > 0 {
		last = last.Content[len(last.Content)-1]
	}
	return diag.Location{
		Filename:  filename,
		StartLine: n.Line,
		StartCol:  n.Column,
		EndLine:   last.Line,
		EndCol:    last.Column + len(last.Value),
	}
}
