package process

import (
	"fmt"

	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/protocol"
)

// codec replaces subject objects by session-scoped integer references and back.
// Ids are assigned on first sighting and never reused within a session.
type codec struct {
	next  int
	byKey map[string]int
	byID  map[int]model.ObjectModel
}

func newCodec() *codec {
	return &codec{
		byKey: make(map[string]int),
		byID:  make(map[int]model.ObjectModel),
	}
}

func (c *codec) reset() {
	c.next = 0
	clear(c.byKey)
	clear(c.byID)
}

// Encode converts a value for the wire.
func (c *codec) Encode(v any) any {
	return protocol.EncodeValue(v, c.ref)
}

// Decode converts a wire value back, failing on ids this session never handed out.
func (c *codec) Decode(v any) (any, error) {
	return protocol.DecodeValue(v, c.lookup)
}

func (c *codec) ref(v any) (protocol.ObjectRef, bool) {
	var obj model.ObjectModel
	switch x := v.(type) {
	case model.CenteredModel:
		obj = x.Center()
	case model.ObjectModel:
		obj = x
	}
	if obj == nil {
		return protocol.ObjectRef{}, false
	}

	key := obj.ID()
	id, seen := c.byKey[key]
	if !seen {
		c.next++
		id = c.next
		c.byKey[key] = id
		c.byID[id] = obj
	}
	r := protocol.ObjectRef{Type: obj.Type(), ID: id}
	if obj.IsScalar() {
		r.Val = protocol.EncodeValue(obj.Val(), c.ref)
	}
	return r, true
}

func (c *codec) lookup(r protocol.ObjectRef) (any, error) {
	obj, ok := c.byID[r.ID]
	if !ok {
		return nil, fmt.Errorf("unknown object id %d", r.ID)
	}
	return obj, nil
}
