package memory_test

import (
	"testing"

	"github.com/aretw0/decomp/pkg/adapters/memory"
	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	b := memory.NewBuilder()
	b.Object("root", model.TypeRoot).Contains("fam")
	b.Object("fam", "Family").Attr("name", "Smith").Refs("sons", "m1", "m2")
	b.Object("m1", "Member").Attr("name", "Ann").At(diag.Location{Filename: "d.yaml", StartLine: 3, StartCol: 5})
	b.Object("m2", "Member").Attr("name", "Bob")

	root, err := b.Build("root")
	require.NoError(t, err)

	assert.Equal(t, []string{model.FeatureCont}, root.FeatureNames())
	fam := root.FeatureAsArray(model.FeatureCont)[0]
	assert.Equal(t, "Family", fam.Type())
	assert.Equal(t, "Smith", fam.Feature("name"))
	assert.Equal(t, []string{"name", "sons"}, fam.FeatureNames())
	assert.Nil(t, fam.Feature("missing"))
	assert.Empty(t, fam.FeatureAsArray("name"), "scalar features normalize to an empty sequence")

	sons := fam.FeatureAsArray("sons")
	require.Len(t, sons, 2)
	assert.Equal(t, "m1", sons[0].ID())
	assert.Equal(t, "m2", sons[1].ID())

	m1 := sons[0].(*memory.Node)
	assert.Equal(t, "d.yaml:3:5", m1.Location().String())
}

func TestBuilder_IdentityStability(t *testing.T) {
	b := memory.NewBuilder()
	b.Object("root", model.TypeRoot).Ref("child", "c").Refs("many", "c", "c")
	b.Object("c", "Child")
	root, err := b.Build("root")
	require.NoError(t, err)

	first := root.Feature("child")
	second := root.Feature("child")
	assert.Same(t, first, second)

	many := root.FeatureAsArray("many")
	require.Len(t, many, 2)
	assert.Same(t, first, many[0])
	assert.Same(t, many[0], many[1])
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("dangling reference", func(t *testing.T) {
		b := memory.NewBuilder()
		b.Object("root", model.TypeRoot).Ref("x", "ghost")
		_, err := b.Build("root")
		assert.ErrorIs(t, err, memory.ErrDanglingReference)
	})

	t.Run("duplicate id", func(t *testing.T) {
		b := memory.NewBuilder()
		b.Object("a", model.TypeRoot)
		b.Object("a", "Other")
		_, err := b.Build("a")
		assert.ErrorContains(t, err, "duplicate node id")
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := memory.NewBuilder().Build("nope")
		assert.ErrorContains(t, err, "root node")
	})
}

func TestScalarNodes(t *testing.T) {
	b := memory.NewBuilder()
	b.Object("root", model.TypeRoot).Refs("tags", "t1")
	b.Scalar("t1", memory.TypeString, "red")
	root, err := b.Build("root")
	require.NoError(t, err)

	tag := root.FeatureAsArray("tags")[0]
	assert.True(t, tag.IsScalar())
	assert.Equal(t, "red", tag.Val())
	assert.Nil(t, root.Val(), "non-scalar nodes have no payload")
}

func TestFromValue(t *testing.T) {
	doc := map[string]any{
		"cont": []any{
			map[string]any{
				"$type": "Family",
				"$id":   "fam",
				"sons": []any{
					map[string]any{"$ref": "m1"},
					map[string]any{"$ref": "m2"},
				},
			},
			map[string]any{"$type": "Member", "$id": "m1", "name": "Ann"},
			map[string]any{"$type": "Member", "$id": "m2", "name": "Bob"},
		},
		"x":    5,
		"tags": []any{"a", 2},
	}

	root, err := memory.FromValue(doc)
	require.NoError(t, err)
	assert.Equal(t, model.TypeRoot, root.Type())
	assert.Equal(t, 5, root.Feature("x"))
	assert.Equal(t, []string{"cont", "tags", "x"}, root.FeatureNames())

	tags := root.FeatureAsArray("tags")
	require.Len(t, tags, 2)
	assert.Equal(t, memory.TypeString, tags[0].Type())
	assert.Equal(t, memory.TypeInteger, tags[1].Type())
	assert.Equal(t, 2, tags[1].Val())

	children := root.FeatureAsArray(model.FeatureCont)
	require.Len(t, children, 3)
	sons := children[0].FeatureAsArray("sons")
	require.Len(t, sons, 2)
	assert.Same(t, children[1], sons[0], "references resolve to the declared node")
	assert.Equal(t, "Bob", sons[1].Feature("name"))

	_, err = memory.FromValue([]any{1})
	assert.Error(t, err)

	root, err = memory.FromValue(map[string]any{"cont": []any{}, "kids": []any{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"kids"}, root.FeatureNames(), "cont is present only with children")
}
