package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/decomp/internal/presentation/graph"
	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/rules"
)

func mustBuild(t *testing.T, b *rules.Builder) *rules.RuleSet {
	t.Helper()
	rs, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return rs
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		build    func(b *rules.Builder)
		contains []string
	}{
		{
			name: "Entry And Leaf Shapes",
			build: func(b *rules.Builder) {
				b.Decomp("Root", "f").Local("g")
				b.Decomp("Root", "g")
			},
			contains: []string{
				`Root_f(("Root.f"))`,
				`Root_g[["Root.g"]]`,
				"Root_f --> Root_g",
			},
		},
		{
			name: "Link Arrows",
			build: func(b *rules.Builder) {
				b.Decomp("Family", "f").
					Forward("sons", "Member", "name").
					Reverse("father", "Member", "name").
					Global("Member", "age")
				b.Decomp("Member", "name").Local("first")
			},
			contains: []string{
				`Family_f -- "sons" --> Member_name`,
				`Family_f -. "father" .-> Member_name`,
				"Family_f ==> Member_age",
				`Member_age(["Member.age"])`,
				`Member_first(["Member.first"])`,
			},
		},
		{
			name: "Wildcard Fans Out",
			build: func(b *rules.Builder) {
				b.Decomp("Root", "f").Forward("items", "Object", "label")
				b.Decomp("A", "label").Local("x")
				b.Decomp("B", "label").Local("y")
			},
			contains: []string{
				`Root_f -- "items" --> A_label`,
				`Root_f -- "items" --> B_label`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := rules.NewBuilder("test")
			tt.build(b)
			got := graph.GenerateMermaid(mustBuild(t, b), nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestOverlayFromError(t *testing.T) {
	b := rules.NewBuilder("test")
	b.Decomp("Root", "f").Local("g")
	b.Decomp("Root", "g").Local("x")
	rs := mustBuild(t, b)

	te := &diag.TransformError{Frames: []diag.StackFrame{
		{Kind: diag.FrameDecomposition, Function: "Root.f"},
		{Kind: diag.FrameLocal, Function: "g"},
		{Kind: diag.FrameDecomposition, Function: "Root.g"},
		{Kind: diag.FrameExternal, Function: "Root_g"},
	}}
	overlay := graph.OverlayFromError(te)
	if overlay == nil || overlay.CurrentNode != "Root.g" {
		t.Fatalf("OverlayFromError() = %+v, want current Root.g", overlay)
	}

	got := graph.GenerateMermaid(rs, overlay)
	for _, want := range []string{"class Root_f visited;", "class Root_g current;"} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
		}
	}
	if strings.Contains(got, "class Root_g visited;") {
		t.Errorf("current node should not also be styled as visited")
	}

	if graph.OverlayFromError(&diag.TransformError{}) != nil {
		t.Errorf("OverlayFromError() without frames should be nil")
	}
}
