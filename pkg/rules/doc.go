/*
Package rules holds the parsed form of a transformation: decompositions and their links.

A Decomposition associates a (Type, name) signature with an ordered list of links. Each link
is one input of the decomposition's leaf function:

  - local:   name               a sibling rule of the same type, or the object's own attribute
  - global:  Type.name          the rule evaluated on every object of Type in the graph
  - forward: ref -> Type.name   the rule evaluated on the objects reached through ref
  - reverse: ref <- Type.name   the rule evaluated on the objects that reach this one through ref

Rule sets are immutable once built. They can be constructed with the fluent Builder or read
from a YAML document with LoadYAML.

	b := rules.NewBuilder("family")
	b.Decomp("Family", "f").Forward("sons", "Member", "name")
	rs, err := b.Build()
*/
package rules
