package validator_test

import (
	"testing"

	"github.com/aretw0/decomp/internal/validator"
	"github.com/aretw0/decomp/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreachable(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *rules.Builder)
		want  []string
	}{
		{
			name: "all reachable",
			build: func(b *rules.Builder) {
				b.Decomp("Family", "f").Forward("sons", "Member", "label").Local("g")
				b.Decomp("Family", "g").Reverse("cont", "Root", "title")
				b.Decomp("Member", "label").Local("name")
				b.Decomp("Root", "title")
			},
		},
		{
			name: "orphan",
			build: func(b *rules.Builder) {
				b.Decomp("Family", "f").Local("g")
				b.Decomp("Family", "g")
				b.Decomp("Family", "h").Local("g")
			},
			want: []string{"Family.h"},
		},
		{
			name: "cycles terminate",
			build: func(b *rules.Builder) {
				b.Decomp("A", "f").Local("g")
				b.Decomp("A", "g").Local("f")
				b.Decomp("B", "f")
			},
			want: []string{"B.f"},
		},
		{
			name: "wildcard reaches every candidate",
			build: func(b *rules.Builder) {
				b.Decomp("Root", "f").Forward("items", "Object", "label")
				b.Decomp("A", "label")
				b.Decomp("B", "label")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := rules.NewBuilder("test")
			tt.build(b)
			rs, err := b.Build()
			require.NoError(t, err)

			var got []string
			for _, d := range validator.Unreachable(rs) {
				got = append(got, d.Function.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLint(t *testing.T) {
	rs, err := rules.LoadYAML("r.yaml", []byte("decompositions:\n  - function: A.f\n  - function: A.g\n"))
	require.NoError(t, err)

	warnings := validator.Lint(rs)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "A.g (r.yaml:3:5")
	assert.Contains(t, warnings[0], "unreachable")

	empty, err := rules.NewRuleSet("empty")
	require.NoError(t, err)
	assert.Empty(t, validator.Lint(empty))
}
