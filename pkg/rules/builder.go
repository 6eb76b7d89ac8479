package rules

import (
	"errors"
	"fmt"

	"github.com/aretw0/decomp/pkg/diag"
)

// Builder manages rule set construction.
type Builder struct {
	source string
	decomp []*DecompositionBuilder
	errs   []error
}

// NewBuilder creates a new rule set builder. source labels the rule set in diagnostics.
func NewBuilder(source string) *Builder {
	return &Builder{source: source}
}

// Decomp declares a decomposition. Declaration order matters: the first one is the entry.
func (b *Builder) Decomp(typ, name string) *DecompositionBuilder {
	db := &DecompositionBuilder{
		d:       &Decomposition{Function: QualifiedName{Type: typ, Name: name}},
		builder: b,
	}
	b.decomp = append(b.decomp, db)
	return db
}

// Build compiles the declared decompositions into a RuleSet.
func (b *Builder) Build() (*RuleSet, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, fmt.Errorf("failed to build rule set: %w", err)
	}
	ds := make([]*Decomposition, 0, len(b.decomp))
	for _, db := range b.decomp {
		ds = append(ds, db.d)
	}
	return NewRuleSet(b.source, ds...)
}

// DecompositionBuilder provides a fluent API for configuring a decomposition.
type DecompositionBuilder struct {
	d       *Decomposition
	builder *Builder
}

// Local adds a local link to a sibling rule or attribute.
func (db *DecompositionBuilder) Local(name string) *DecompositionBuilder {
	return db.add(Link{Kind: LinkLocal, Function: FunctionRef{Name: name}, ParameterName: name})
}

// Global adds a link evaluating typ.name on every object of typ in the graph.
func (db *DecompositionBuilder) Global(typ, name string) *DecompositionBuilder {
	return db.add(Link{Kind: LinkGlobal, Function: FunctionRef{Type: typ, Name: name}, ParameterName: name})
}

// Forward adds ref -> typ.name.
func (db *DecompositionBuilder) Forward(ref, typ, name string) *DecompositionBuilder {
	return db.add(Link{Kind: LinkForward, RefName: ref, Function: FunctionRef{Type: typ, Name: name}, ParameterName: ref})
}

// Reverse adds ref <- typ.name.
func (db *DecompositionBuilder) Reverse(ref, typ, name string) *DecompositionBuilder {
	return db.add(Link{Kind: LinkReverse, RefName: ref, Function: FunctionRef{Type: typ, Name: name}, ParameterName: ref})
}

// Link adds a link written as an expression (see ParseLink).
func (db *DecompositionBuilder) Link(expr string) *DecompositionBuilder {
	l, err := ParseLink(expr)
	if err != nil {
		db.builder.errs = append(db.builder.errs, fmt.Errorf("%s: %w", db.d.Function, err))
		return db
	}
	return db.add(l)
}

// As renames the parameter of the most recently added link.
func (db *DecompositionBuilder) As(param string) *DecompositionBuilder {
	if n := len(db.d.Links); n > 0 {
		db.d.Links[n-1].ParameterName = param
	}
	return db
}

// Comment attaches free text to the decomposition.
func (db *DecompositionBuilder) Comment(text string) *DecompositionBuilder {
	db.d.Comment = text
	return db
}

// At records the decomposition's source range.
func (db *DecompositionBuilder) At(loc diag.Location) *DecompositionBuilder {
	db.d.Range = loc
	return db
}

// Decomp declares the next decomposition on the same builder.
func (db *DecompositionBuilder) Decomp(typ, name string) *DecompositionBuilder {
	return db.builder.Decomp(typ, name)
}

// Build compiles the builder's rule set. It is shorthand for chaining off the last declaration.
func (db *DecompositionBuilder) Build() (*RuleSet, error) {
	return db.builder.Build()
}

func (db *DecompositionBuilder) add(l Link) *DecompositionBuilder {
	db.d.Links = append(db.d.Links, l)
	return db
}
