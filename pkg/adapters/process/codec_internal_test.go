package process

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/decomp/pkg/adapters/memory"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec(t *testing.T) {
	b := memory.NewBuilder()
	b.Object("root", model.TypeRoot).Refs("xs", "s1")
	b.Scalar("s1", "Integer", 42)
	root, err := b.Build("root")
	require.NoError(t, err)
	s1, _ := root.Graph().Node("s1")

	c := newCodec()
	first := c.Encode(root)
	again := c.Encode(root)
	assert.Equal(t, first, again, "ids are stable within a session")
	assert.Equal(t, protocol.ObjectRef{Type: model.TypeRoot, ID: 1}, first)
	assert.Equal(t, protocol.ObjectRef{Type: "Integer", ID: 2, Val: 42}, c.Encode(s1))

	got, err := c.Decode(map[string]any{"type": "Integer", "id": jsonNumber("2")})
	require.NoError(t, err)
	assert.Same(t, s1, got)

	c.reset()
	_, err = c.Decode(map[string]any{"type": "Integer", "id": jsonNumber("2")})
	assert.ErrorContains(t, err, "unknown object id 2")
	assert.Equal(t, protocol.ObjectRef{Type: "Integer", ID: 1, Val: 42}, c.Encode(s1))
}

func jsonNumber(s string) json.Number { return json.Number(s) }
