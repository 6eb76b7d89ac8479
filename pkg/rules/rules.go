package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/ports"
)

// ErrDuplicateDecomposition is returned when two decompositions share a signature.
var ErrDuplicateDecomposition = errors.New("duplicate decomposition")

// QualifiedName is the (Type, name) signature of a decomposition.
type QualifiedName struct {
	Type string
	Name string
}

// String renders Type.name.
func (q QualifiedName) String() string {
	return q.Type + "." + q.Name
}

// Canonical is the leaf-function identifier, Type_name.
func (q QualifiedName) Canonical() string {
	return q.Type + "_" + q.Name
}

// FunctionRef is the function a link points at. An untyped reference (Type == "")
// names a sibling decomposition of the enclosing type.
type FunctionRef struct {
	Type string
	Name string
}

// Typed reports whether the reference carries an explicit type.
func (f FunctionRef) Typed() bool { return f.Type != "" }

// Wildcard reports whether the reference is typed with the Object wildcard.
func (f FunctionRef) Wildcard() bool { return f.Type == model.TypeObject }

func (f FunctionRef) String() string {
	if !f.Typed() {
		return f.Name
	}
	return f.Type + "." + f.Name
}

// LinkKind tags the link variants.
type LinkKind int

const (
	// LinkLocal is a bare name: a sibling rule or an attribute of the same object.
	LinkLocal LinkKind = iota
	// LinkGlobal is Type.name evaluated on every object of Type in the graph.
	LinkGlobal
	// LinkForward is ref -> Type.name, evaluated on the successors through ref.
	LinkForward
	// LinkReverse is ref <- Type.name, evaluated on the predecessors through ref.
	LinkReverse
)

func (k LinkKind) String() string {
	switch k {
	case LinkLocal:
		return "local"
	case LinkGlobal:
		return "global"
	case LinkForward:
		return "forward"
	case LinkReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// Link is one declared input of a decomposition.
type Link struct {
	Kind     LinkKind
	RefName  string
	Function FunctionRef
	// ParameterName is the positional-argument identity of the link's value.
	ParameterName string
	Range         diag.Location
}

// String renders the link the way it is written in a rule.
func (l Link) String() string {
	switch l.Kind {
	case LinkForward:
		return l.RefName + " -> " + l.Function.String()
	case LinkReverse:
		return l.RefName + " <- " + l.Function.String()
	default:
		return l.Function.String()
	}
}

// Decomposition is one named rule: a signature and its ordered links.
type Decomposition struct {
	Function QualifiedName
	Links    []Link
	Comment  string
	Range    diag.Location
}

// ParameterNames returns the link parameter names in declaration order.
func (d *Decomposition) ParameterNames() []string {
	out := make([]string, len(d.Links))
	for i, l := range d.Links {
		out[i] = l.ParameterName
	}
	return out
}

// RuleSet is a parsed, immutable transformation.
type RuleSet struct {
	source string
	decomp []*Decomposition
	index  map[QualifiedName]*Decomposition
}

// NewRuleSet indexes decompositions by signature, keeping declaration order.
func NewRuleSet(source string, decompositions ...*Decomposition) (*RuleSet, error) {
	rs := &RuleSet{
		source: source,
		index:  make(map[QualifiedName]*Decomposition, len(decompositions)),
	}
	for _, d := range decompositions {
		if d == nil {
			continue
		}
		if err := d.validate(); err != nil {
			return nil, err
		}
		if prev, dup := rs.index[d.Function]; dup {
			return nil, fmt.Errorf("%w: %s declared at %s and %s", ErrDuplicateDecomposition, d.Function, prev.Range, d.Range)
		}
		rs.index[d.Function] = d
		rs.decomp = append(rs.decomp, d)
	}
	return rs, nil
}

func (d *Decomposition) validate() error {
	if d.Function.Type == "" || d.Function.Name == "" {
		return fmt.Errorf("decomposition at %s needs both a type and a name", d.Range)
	}
	for _, l := range d.Links {
		if l.Function.Name == "" {
			return fmt.Errorf("%s: link %q has no function name", d.Function, l)
		}
		if l.Kind != LinkLocal && !l.Function.Typed() {
			return fmt.Errorf("%s: %s link %q must name a type", d.Function, l.Kind, l)
		}
		if (l.Kind == LinkForward || l.Kind == LinkReverse) && l.RefName == "" {
			return fmt.Errorf("%s: %s link %q must name a reference", d.Function, l.Kind, l)
		}
	}
	return nil
}

// Source names where the rule set was read from.
func (r *RuleSet) Source() string { return r.source }

// Decompositions returns the decompositions in declaration order.
func (r *RuleSet) Decompositions() []*Decomposition {
	out := make([]*Decomposition, len(r.decomp))
	copy(out, r.decomp)
	return out
}

// First returns the entry decomposition.
func (r *RuleSet) First() (*Decomposition, bool) {
	if len(r.decomp) == 0 {
		return nil, false
	}
	return r.decomp[0], true
}

// Lookup finds the decomposition with the given signature.
func (r *RuleSet) Lookup(q QualifiedName) (*Decomposition, bool) {
	d, ok := r.index[q]
	return d, ok
}

// Criteria derives the validation criteria a runner is checked against.
func (r *RuleSet) Criteria() []ports.FunctionCriteria {
	out := make([]ports.FunctionCriteria, 0, len(r.decomp))
	for _, d := range r.decomp {
		out = append(out, ports.FunctionCriteria{
			FunctionName:  d.Function.Canonical(),
			Parameters:    d.ParameterNames(),
			QualifiedName: d.Function.String(),
			Optional:      len(d.Links) == 0,
		})
	}
	return out
}

// ParseLink reads a link written as "name", "Type.name", "ref -> Type.name" or "ref <- Type.name".
// The parameter name defaults to the function name for local and global links and to the
// reference name otherwise.
func ParseLink(expr string) (Link, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Link{}, errors.New("empty link expression")
	}

	for _, arrow := range []struct {
		token string
		kind  LinkKind
	}{{"->", LinkForward}, {"<-", LinkReverse}} {
		ref, target, found := strings.Cut(expr, arrow.token)
		if !found {
			continue
		}
		ref, target = strings.TrimSpace(ref), strings.TrimSpace(target)
		fn, err := parseFunctionRef(target)
		if err != nil {
			return Link{}, fmt.Errorf("link %q: %w", expr, err)
		}
		if ref == "" || !isIdentifier(ref) {
			return Link{}, fmt.Errorf("link %q: invalid reference name %q", expr, ref)
		}
		if !fn.Typed() {
			return Link{}, fmt.Errorf("link %q: target must be Type.name", expr)
		}
		return Link{Kind: arrow.kind, RefName: ref, Function: fn, ParameterName: ref}, nil
	}

	fn, err := parseFunctionRef(expr)
	if err != nil {
		return Link{}, fmt.Errorf("link %q: %w", expr, err)
	}
	kind := LinkLocal
	if fn.Typed() {
		kind = LinkGlobal
	}
	return Link{Kind: kind, Function: fn, ParameterName: fn.Name}, nil
}

// ParseQualifiedName reads "Type.name".
func ParseQualifiedName(s string) (QualifiedName, error) {
	fn, err := parseFunctionRef(strings.TrimSpace(s))
	if err != nil {
		return QualifiedName{}, err
	}
	if !fn.Typed() {
		return QualifiedName{}, fmt.Errorf("%q is not a qualified name (Type.name)", s)
	}
	return QualifiedName{Type: fn.Type, Name: fn.Name}, nil
}

func parseFunctionRef(s string) (FunctionRef, error) {
	typ, name, typed := strings.Cut(s, ".")
	if !typed {
		if !isIdentifier(s) {
			return FunctionRef{}, fmt.Errorf("invalid function name %q", s)
		}
		return FunctionRef{Name: s}, nil
	}
	if !isIdentifier(typ) || !isIdentifier(name) {
		return FunctionRef{}, fmt.Errorf("invalid function reference %q", s)
	}
	return FunctionRef{Type: typ, Name: name}, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Targets lists the signatures l may resolve to without looking at a subject.
// A wildcard link may reach every declared decomposition with that name; with none
// declared it resolves to the Object-typed signature.
func (r *RuleSet) Targets(d *Decomposition, l Link) []QualifiedName {
	switch {
	case !l.Function.Typed():
		return []QualifiedName{{Type: d.Function.Type, Name: l.Function.Name}}
	case l.Function.Wildcard():
		var out []QualifiedName
		for _, other := range r.decomp {
			if other.Function.Name == l.Function.Name {
				out = append(out, other.Function)
			}
		}
		if len(out) == 0 {
			out = append(out, QualifiedName{Type: l.Function.Type, Name: l.Function.Name})
		}
		return out
	default:
		return []QualifiedName{{Type: l.Function.Type, Name: l.Function.Name}}
	}
}
