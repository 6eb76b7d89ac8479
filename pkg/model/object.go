package model

import "errors"

const (
	// TypeObject is the wildcard type tag: it matches any node.
	TypeObject = "Object"
	// TypeRoot is the type of the node a loader returns as the graph root.
	TypeRoot = "Root"

	// FeatureCont holds contained children. It is present only on nodes that have some.
	FeatureCont = "cont"
	// FeatureCenter and FeatureVal are answered by CenteredModel itself.
	FeatureCenter = "center"
	FeatureVal    = "val"
)

// ErrNilModel is returned when a CenteredModel is built without a graph or a center.
var ErrNilModel = errors.New("centered model requires a graph and a center")

// ObjectModel is one node of a subject graph.
type ObjectModel interface {
	// ID is stable and unique within one loaded graph. It is used for identity only.
	ID() string
	// Type is an open-ended tag.
	Type() string
	IsScalar() bool
	// Val is the scalar payload; it is meaningful only when IsScalar is true.
	Val() any
	// FeatureNames lists the node's features in declaration order.
	FeatureNames() []string
	// Feature returns a scalar, a single ObjectModel, a []ObjectModel, or nil when absent.
	Feature(name string) any
	// FeatureAsArray normalizes Feature into a sequence; scalars and absent features yield none.
	FeatureAsArray(name string) []ObjectModel
}

// AsArray normalizes a Feature value. Loaders use it to implement FeatureAsArray.
func AsArray(v any) []ObjectModel {
	switch t := v.(type) {
	case ObjectModel:
		return []ObjectModel{t}
	case []ObjectModel:
		return t
	default:
		return nil
	}
}

// Matches reports whether a node of type actual satisfies the wanted type tag.
func Matches(actual, wanted string) bool {
	return wanted == TypeObject || actual == wanted
}
