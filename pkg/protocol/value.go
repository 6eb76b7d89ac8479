package protocol

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/aretw0/decomp/pkg/model"
)

// ObjectRef is the wire form of a subject object: a bare {"type","id"} object,
// plus "val" for scalar objects. A nil Val is omitted; any other value, zero included,
// is sent.
type ObjectRef struct {
	Type string
	ID   int
	Val  any
}

type bareRef struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

type scalarRef struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	Val  any    `json:"val"`
}

// MarshalJSON implements json.Marshaler.
func (r ObjectRef) MarshalJSON() ([]byte, error) {
	if r.Val == nil {
		return json.Marshal(bareRef{Type: r.Type, ID: r.ID})
	}
	return json.Marshal(scalarRef{Type: r.Type, ID: r.ID, Val: r.Val})
}

// EncodeValue converts v into a JSON-ready value. ref is consulted first for every
// value and reports whether it stands for an object reference; sets and
// slices of nodes become plain arrays.
func EncodeValue(v any, ref func(any) (ObjectRef, bool)) any {
	if r, ok := ref(v); ok {
		return r
	}
	switch x := v.(type) {
	case *model.Set:
		return EncodeValue(x.Items(), ref)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = EncodeValue(item, ref)
		}
		return out
	case []model.ObjectModel:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = EncodeValue(item, ref)
		}
		return out
	case []model.CenteredModel:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = EncodeValue(item, ref)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = EncodeValue(item, ref)
		}
		return out
	default:
		return v
	}
}

// DecodeValue walks a value produced by ReadMessage. Object references are handed to
// resolve, integral numbers become int and other numbers float64.
//
// A map is an object reference when it holds a string "type" and a numeric "id" and
// no keys besides those and "val".
func DecodeValue(v any, resolve func(ObjectRef) (any, error)) (any, error) {
	switch x := v.(type) {
	case json.Number:
		return decodeNumber(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			d, err := DecodeValue(item, resolve)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	case map[string]any:
		if isRef(x) {
			r, err := parseRef(x)
			if err != nil {
				return nil, err
			}
			if resolve == nil {
				return nil, fmt.Errorf("unexpected object reference %s#%d", r.Type, r.ID)
			}
			return resolve(r)
		}
		out := maps.Clone(x)
		for k, item := range x {
			d, err := DecodeValue(item, resolve)
			if err != nil {
				return nil, err
			}
			out[k] = d
		}
		return out, nil
	default:
		return v, nil
	}
}

func decodeNumber(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return f, nil
}

func isRef(m map[string]any) bool {
	if _, ok := m["type"].(string); !ok {
		return false
	}
	if _, ok := m["id"].(json.Number); !ok {
		return false
	}
	for k := range m {
		switch k {
		case "type", "id", "val":
		default:
			return false
		}
	}
	return true
}

func parseRef(m map[string]any) (ObjectRef, error) {
	typ := m["type"].(string)
	num := m["id"].(json.Number)
	id, err := num.Int64()
	if err != nil {
		return ObjectRef{}, fmt.Errorf("invalid object id %q: %w", num, err)
	}
	r := ObjectRef{Type: typ, ID: int(id)}
	if val, ok := m["val"]; ok {
		if r.Val, err = DecodeValue(val, rejectRefs); err != nil {
			return ObjectRef{}, err
		}
	}
	return r, nil
}

func rejectRefs(ObjectRef) (any, error) {
	return nil, fmt.Errorf("scalar value cannot hold an object reference")
}
