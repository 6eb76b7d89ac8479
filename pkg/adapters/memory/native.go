package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/decomp/pkg/model"
)

// Keys with a special meaning in native documents.
const (
	KeyType = "$type"
	KeyID   = "$id"
	KeyRef  = "$ref"
)

// Scalar node types assigned to list elements that are plain values.
const (
	TypeString  = "String"
	TypeInteger = "Integer"
	TypeFloat   = "Float"
	TypeBoolean = "Boolean"
	TypeNull    = "Null"
)

// FromValue loads a native Go document (maps, slices and scalars, as produced by
// encoding/json or yaml.v3) into a graph and returns its root.
//
// Maps become objects; "$type" names the type (the top-level map defaults to Root,
// nested ones to Object) and "$id" fixes the id, otherwise one is generated.
// A map holding only "$ref" is a reference to the object with that id.
// Plain values in lists become scalar nodes. Map keys are visited in sorted order
// so generated ids are deterministic.
func FromValue(v any) (*Node, error) {
	doc, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("native document root must be a map, got %T", v)
	}
	b := NewBuilder()
	rootID, err := loadObject(b, doc, model.TypeRoot)
	if err != nil {
		return nil, err
	}
	return b.Build(rootID)
}

func loadObject(b *Builder, doc map[string]any, defaultType string) (string, error) {
	typ := defaultType
	if t, ok := doc[KeyType].(string); ok && t != "" {
		typ = t
	}
	id, _ := doc[KeyID].(string)
	if id == "" {
		id = b.NextID("n")
	}
	nb := b.Object(id, typ)

	keys := make([]string, 0, len(doc))
	for k := range doc {
		if k == KeyType || k == KeyID {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := loadFeature(b, nb, key, doc[key]); err != nil {
			return "", fmt.Errorf("%s.%s: %w", id, key, err)
		}
	}
	return id, nil
}

func loadFeature(b *Builder, nb *NodeBuilder, key string, value any) error {
	if m, ok := asMap(value); ok {
		id, err := loadChild(b, m)
		if err != nil {
			return err
		}
		if key == model.FeatureCont {
			nb.Contains(id)
			return nil
		}
		nb.Ref(key, id)
		return nil
	}
	if list, ok := value.([]any); ok {
		ids := make([]string, 0, len(list))
		for _, elem := range list {
			var (
				id  string
				err error
			)
			if m, ok := asMap(elem); ok {
				id, err = loadChild(b, m)
			} else {
				id = b.NextID("s")
				b.Scalar(id, ScalarType(elem), elem)
			}
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		if key == model.FeatureCont {
			nb.Contains(ids...)
			return nil
		}
		nb.Refs(key, ids...)
		return nil
	}
	nb.Attr(key, value)
	return nil
}

func loadChild(b *Builder, m map[string]any) (string, error) {
	if ref, ok := m[KeyRef].(string); ok && len(m) == 1 {
		return ref, nil
	}
	return loadObject(b, m, model.TypeObject)
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = e
		}
		return out, true
	default:
		return nil, false
	}
}

// ScalarType names the scalar node type used for a plain value.
func ScalarType(v any) string {
	switch v.(type) {
	case nil:
		return TypeNull
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeFloat
	default:
		return model.TypeObject
	}
}
