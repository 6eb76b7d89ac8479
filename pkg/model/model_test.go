package model_test

import (
	"slices"
	"testing"

	"github.com/aretw0/decomp/pkg/adapters/memory"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// familyGraph builds Root{cont:[f1, f2, m1, m2, m3]} where f1.sons=[m1, m2], f2.sons=[m2, m3].
func familyGraph(t *testing.T) model.ObjectModel {
	t.Helper()
	b := memory.NewBuilder()
	b.Object("root", model.TypeRoot).Contains("f1", "f2", "m1", "m2", "m3")
	b.Object("f1", "Family").Attr("name", "Smith").Refs("sons", "m1", "m2")
	b.Object("f2", "Family").Attr("name", "Jones").Refs("sons", "m2", "m3").Ref("pet", "p1")
	b.Object("p1", "Pet")
	b.Object("m1", "Member").Attr("name", "Ann")
	b.Object("m2", "Member").Attr("name", "Bob")
	b.Object("m3", "Member").Attr("name", "Cid")
	root, err := b.Build("root")
	require.NoError(t, err)
	return root
}

func center(t *testing.T, graph model.ObjectModel, id string) model.CenteredModel {
	t.Helper()
	for node := range model.Reachable(graph) {
		if node.ID() == id {
			cm, err := model.NewCentered(graph, node)
			require.NoError(t, err)
			return cm
		}
	}
	t.Fatalf("node %s not reachable", id)
	return model.CenteredModel{}
}

func ids(cms []model.CenteredModel) []string {
	out := make([]string, len(cms))
	for i, cm := range cms {
		out[i] = cm.ID()
	}
	return out
}

func TestNewCentered_RequiresModels(t *testing.T) {
	graph := familyGraph(t)
	_, err := model.NewCentered(nil, graph)
	assert.ErrorIs(t, err, model.ErrNilModel)
	_, err = model.NewCentered(graph, nil)
	assert.ErrorIs(t, err, model.ErrNilModel)
}

func TestCenteredModel_Feature(t *testing.T) {
	graph := familyGraph(t)
	f1 := center(t, graph, "f1")

	assert.Equal(t, "Family", f1.Type())
	assert.Same(t, f1.Center(), f1.Feature(model.FeatureCenter))
	assert.Nil(t, f1.Feature(model.FeatureVal))
	assert.Equal(t, "Smith", f1.Feature("name"))
	assert.Same(t, graph, f1.Graph())
}

func TestSuccessors(t *testing.T) {
	graph := familyGraph(t)
	f2 := center(t, graph, "f2")

	t.Run("wildcard keeps every object in source order", func(t *testing.T) {
		got := f2.Successors("sons", model.TypeObject)
		want := f2.Center().FeatureAsArray("sons")
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID(), got[i].ID())
			assert.Same(t, graph, got[i].Graph())
		}
	})

	t.Run("type filter", func(t *testing.T) {
		root := center(t, graph, "root")
		assert.Equal(t, []string{"f1", "f2"}, ids(root.Successors(model.FeatureCont, "Family")))
		assert.Empty(t, root.Successors(model.FeatureCont, "Pet"), "p1 is not contained by root")
	})

	t.Run("scalar and absent features", func(t *testing.T) {
		assert.Empty(t, f2.Successors("name", model.TypeObject))
		assert.Empty(t, f2.Successors("nothing", model.TypeObject))
	})
}

func TestPredecessors(t *testing.T) {
	graph := familyGraph(t)

	assert.ElementsMatch(t, []string{"f1", "f2"}, ids(center(t, graph, "m2").Predecessors("sons", "Family")))
	assert.Equal(t, []string{"f1"}, ids(center(t, graph, "m1").Predecessors("sons", model.TypeObject)))
	assert.Empty(t, center(t, graph, "m1").Predecessors("sons", "Pet"))
	assert.Equal(t, []string{"root"}, ids(center(t, graph, "f1").Predecessors(model.FeatureCont, model.TypeObject)))
}

func TestPredecessors_InverseOfSuccessors(t *testing.T) {
	graph := familyGraph(t)
	refs := []string{"sons", "pet", model.FeatureCont}

	var all []string
	for node := range model.Reachable(graph) {
		all = append(all, node.ID())
	}

	for _, a := range all {
		ca := center(t, graph, a)
		for _, ref := range refs {
			for _, b := range all {
				cb := center(t, graph, b)
				forward := slices.Contains(ids(ca.Successors(ref, model.TypeObject)), b)
				backward := slices.Contains(ids(cb.Predecessors(ref, model.TypeObject)), a)
				assert.Equal(t, forward, backward, "%s -%s-> %s", a, ref, b)
			}
		}
	}
}

func TestPredecessors_OrderIndependent(t *testing.T) {
	build := func(order []string) model.ObjectModel {
		b := memory.NewBuilder()
		b.Object("root", model.TypeRoot).Contains(order...)
		b.Object("f1", "Family").Refs("sons", "m")
		b.Object("f2", "Family").Refs("sons", "m")
		b.Object("f3", "Family")
		b.Object("m", "Member")
		root, err := b.Build("root")
		require.NoError(t, err)
		return root
	}

	a := build([]string{"f1", "f2", "f3", "m"})
	b := build([]string{"m", "f3", "f2", "f1"})

	setA := model.NewSet()
	for _, cm := range center(t, a, "m").Predecessors("sons", "Family") {
		setA.Add(cm)
	}
	setB := model.NewSet()
	for _, cm := range center(t, b, "m").Predecessors("sons", "Family") {
		setB.Add(cm)
	}
	assert.True(t, setA.Equal(setB))
	assert.Equal(t, 2, setA.Len())
}

func TestReachable(t *testing.T) {
	t.Run("pre-order by feature order", func(t *testing.T) {
		graph := familyGraph(t)
		var order []string
		for node := range model.Reachable(graph) {
			order = append(order, node.ID())
		}
		assert.Equal(t, []string{"root", "f1", "m1", "m2", "f2", "m3", "p1"}, order)
	})

	t.Run("cycles are visited once", func(t *testing.T) {
		b := memory.NewBuilder()
		b.Object("root", model.TypeRoot).Ref("next", "a")
		b.Object("a", "Link").Ref("next", "b")
		b.Object("b", "Link").Ref("next", "a").Ref("back", "root")
		root, err := b.Build("root")
		require.NoError(t, err)

		var order []string
		for node := range model.Reachable(root) {
			order = append(order, node.ID())
		}
		assert.Equal(t, []string{"root", "a", "b"}, order)

		cb := center(t, root, "a")
		assert.ElementsMatch(t, []string{"root", "b"}, ids(cb.Predecessors("next", model.TypeObject)))
	})

	t.Run("early stop", func(t *testing.T) {
		graph := familyGraph(t)
		count := 0
		for range model.Reachable(graph) {
			count++
			if count == 2 {
				break
			}
		}
		assert.Equal(t, 2, count)
	})
}

func TestOfType(t *testing.T) {
	graph := familyGraph(t)
	root := center(t, graph, "root")
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(root.OfType("Member")))
	assert.Len(t, root.OfType(model.TypeObject), 7)
}

func TestIdentityStability(t *testing.T) {
	graph := familyGraph(t)
	for node := range model.Reachable(graph) {
		for _, name := range node.FeatureNames() {
			first := node.FeatureAsArray(name)
			second := node.FeatureAsArray(name)
			require.Equal(t, len(first), len(second))
			for i := range first {
				assert.Equal(t, first[i].ID(), second[i].ID())
			}
		}
	}
}

func TestSet(t *testing.T) {
	graph := familyGraph(t)
	m1 := center(t, graph, "m1")

	s := model.NewSet(1, 1, "a", m1, m1.Center())
	assert.Equal(t, 3, s.Len(), "duplicates by identity are dropped")
	assert.True(t, s.Contains(m1))
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains(2))
	assert.False(t, s.Add(1))
	assert.True(t, s.Add(nil))
	assert.False(t, s.Add(nil))
}

func TestSet_Composites(t *testing.T) {
	type tagged struct{ V any }

	t.Run("distinct slices with equal contents are kept apart", func(t *testing.T) {
		xs := []any{"x"}
		s := model.NewSet(xs, xs, []any{"x"}, "[]interface {}:[x]")
		assert.Equal(t, 3, s.Len())
		assert.True(t, s.Contains(xs))
		assert.False(t, s.Contains([]any{"x"}))
	})

	t.Run("maps are keyed by instance", func(t *testing.T) {
		m := map[string]any{"k": 1}
		s := model.NewSet(m, m, map[string]any{"k": 1})
		assert.Equal(t, 2, s.Len())
		assert.True(t, s.Contains(m))
	})

	t.Run("struct holding a slice is never merged", func(t *testing.T) {
		v := tagged{V: []any{"x"}}
		s := model.NewSet()
		require.NotPanics(t, func() {
			assert.True(t, s.Add(v))
			assert.True(t, s.Add(v))
		})
		assert.Equal(t, 2, s.Len())
		assert.False(t, s.Contains(v))
	})

	t.Run("struct holding a scalar stays comparable", func(t *testing.T) {
		s := model.NewSet(tagged{V: 1}, tagged{V: 1})
		assert.Equal(t, 1, s.Len())
		assert.True(t, s.Contains(tagged{V: 1}))
	})
}

func TestPlain(t *testing.T) {
	graph := familyGraph(t)
	m1 := center(t, graph, "m1")

	got := model.Plain([]any{m1, model.NewSet("x"), map[string]any{"k": m1.Center()}})
	assert.Equal(t, []any{
		map[string]any{"type": "Member", "id": "m1"},
		[]any{"x"},
		map[string]any{"k": map[string]any{"type": "Member", "id": "m1"}},
	}, got)
}
