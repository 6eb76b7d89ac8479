package model

import "reflect"

// Set is an unordered collection deduplicated by identity.
//
// Nodes (ObjectModel and CenteredModel) are keyed by ID, comparable values by value,
// and non-empty slices and maps by their backing storage. Values with no usable
// identity, such as a struct wrapping a slice, are never merged. Items reports
// insertion order, which callers must not rely on.
type Set struct {
	keys   map[any]struct{}
	items  []any
	opaque int
}

// NewSet builds a set from the given values.
func NewSet(values ...any) *Set {
	s := &Set{keys: make(map[any]struct{}, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

type nodeKey string

type refKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type opaqueKey int

// IdentityKey returns the key Set uses to deduplicate v.
// ok is false when v has no identity; every occurrence of such a value is distinct.
func IdentityKey(v any) (key any, ok bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case ObjectModel:
		return nodeKey(t.ID()), true
	case CenteredModel:
		if t.IsZero() {
			return nil, true
		}
		return nodeKey(t.ID()), true
	}
	rv := reflect.ValueOf(v)
	if rv.Comparable() {
		return v, true
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Len() > 0 {
			return refKey{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}, true
		}
	case reflect.Map:
		if !rv.IsNil() {
			return refKey{typ: rv.Type(), ptr: rv.Pointer()}, true
		}
	}
	return nil, false
}

// Add inserts v and reports whether it was not already present.
func (s *Set) Add(v any) bool {
	if s.keys == nil {
		s.keys = map[any]struct{}{}
	}
	k, ok := IdentityKey(v)
	if !ok {
		s.opaque++
		k = opaqueKey(s.opaque)
	}
	if _, dup := s.keys[k]; dup {
		return false
	}
	s.keys[k] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether an element with v's identity is present.
// It is always false for values without identity.
func (s *Set) Contains(v any) bool {
	if s == nil {
		return false
	}
	k, ok := IdentityKey(v)
	if !ok {
		return false
	}
	_, found := s.keys[k]
	return found
}

// Len returns the number of elements.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns the elements. The order is incidental.
func (s *Set) Items() []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// Equal reports whether both sets hold the same identities.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, v := range s.Items() {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}
