package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/decomp/internal/logging"
	"github.com/aretw0/decomp/internal/testutils"
	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.Output)
		assert.Equal(t, "auto", cfg.Color)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "Root", cfg.RootType)
		assert.Equal(t, slog.LevelWarn, cfg.Level())
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("DECOMP_LOG_LEVEL", "debug")
		t.Setenv("DECOMP_OUTPUT", "yaml")
		v := viper.New()
		v.SetEnvPrefix("DECOMP")
		v.AutomaticEnv()

		cfg, err := LoadConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "yaml", cfg.Output)
		assert.Equal(t, slog.LevelDebug, cfg.Level())
	})

	t.Run("config file", func(t *testing.T) {
		path := testutils.WriteFile(t, t.TempDir(), "decomp.yaml", "rules: r.yaml\ndata: d.yaml\nvalidate: true\n")
		v := viper.New()
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := LoadConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "r.yaml", cfg.Rules)
		assert.True(t, cfg.Validate)
	})

	t.Run("invalid output", func(t *testing.T) {
		v := viper.New()
		v.Set("output", "xml")
		_, err := LoadConfig(v)
		assert.ErrorContains(t, err, "xml")
	})
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	data := testutils.WriteFile(t, dir, "doc.yaml", "title: hello\ncont:\n  - {$type: Section, heading: Intro}\n")
	logger := logging.NewNop()

	t.Run("attribute fallback", func(t *testing.T) {
		cfg := Config{
			Rules:    testutils.WriteFile(t, dir, "title.rules.yaml", "decompositions:\n  - function: Root.title\n"),
			Data:     data,
			Output:   "json",
			RootType: "Root",
		}
		var out bytes.Buffer
		require.NoError(t, Run(context.Background(), cfg, &out, logger))
		assert.Equal(t, "\"hello\"\n", out.String())
	})

	t.Run("yaml output", func(t *testing.T) {
		cfg := Config{
			Rules:    testutils.WriteFile(t, dir, "heading.rules.yaml", "decompositions:\n  - function: Section.heading\n"),
			Data:     data,
			Output:   "yaml",
			RootType: "Root",
		}
		var out bytes.Buffer
		require.NoError(t, Run(context.Background(), cfg, &out, logger))
		assert.Equal(t, "Intro\n", out.String())
	})

	t.Run("missing leaf", func(t *testing.T) {
		cfg := Config{
			Rules:    testutils.WriteFile(t, dir, "leaf.rules.yaml", "decompositions:\n  - function: Root.f\n    links: [title]\n"),
			Data:     data,
			Output:   "json",
			RootType: "Root",
		}
		err := Run(context.Background(), cfg, &bytes.Buffer{}, logger)
		require.ErrorIs(t, err, ports.ErrMissingFunction)

		var te *diag.TransformError
		require.ErrorAs(t, err, &te)
		require.Len(t, te.Frames, 1)
		assert.Contains(t, te.Frames[0].String(), "leaf.rules.yaml:2:5")
	})

	t.Run("validate", func(t *testing.T) {
		cfg := Config{Rules: filepath.Join(dir, "leaf.rules.yaml"), RootType: "Root"}
		err := Validate(context.Background(), cfg, logger)
		var agg *ports.AggregateError
		require.ErrorAs(t, err, &agg)
		assert.Len(t, agg.Errors, 1)
	})

	t.Run("inputs required", func(t *testing.T) {
		assert.Error(t, Run(context.Background(), Config{}, &bytes.Buffer{}, logger))
	})
}

func TestCreateRunner_WorkerConvention(t *testing.T) {
	dir := t.TempDir()
	rulesPath := testutils.WriteFile(t, dir, "r.yaml", "decompositions: []\n")
	testutils.WriteFile(t, dir, DefaultWorkerFile, "command: ./does-not-exist\nversion_command: [./does-not-exist]\n")

	_, err := createRunner(context.Background(), Config{Rules: rulesPath}, logging.NewNop())
	var ce *ports.ConfigurationError
	require.ErrorAs(t, err, &ce, "the worker next to the rules is picked up and its version probe fails")
}

func TestPrintError(t *testing.T) {
	te := &diag.TransformError{
		Frames: []diag.StackFrame{
			{Kind: diag.FrameDecomposition, Function: "Root.f"},
			{Kind: diag.FrameExternal, Function: "Root_f", Language: "go", Message: "boom"},
		},
		Err: errors.New("boom"),
	}

	var buf bytes.Buffer
	PrintError(&buf, te, false)
	assert.Equal(t, "transformation failed: boom\n  in decomposition Root.f\n  go function Root_f failed: boom\n", buf.String())

	buf.Reset()
	PrintError(&buf, &ports.AggregateError{Errors: []error{&ports.ValidationError{QualifiedName: "A.f", Reason: "missing"}}}, false)
	assert.Equal(t, "1 function(s) do not match the rules:\n  - A.f: missing\n", buf.String())

	buf.Reset()
	PrintError(&buf, errors.New("plain"), true)
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "error: plain")
}

func TestColorEnabled(t *testing.T) {
	assert.True(t, ColorEnabled("always", &bytes.Buffer{}))
	assert.False(t, ColorEnabled("never", os.Stdout))
	assert.False(t, ColorEnabled("auto", &bytes.Buffer{}))
}

func TestExplain(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Rules: testutils.WriteFile(t, dir, "r.yaml", "decompositions:\n  - function: Root.f\n    comment: the entry\n    links: [title]\n")}

	var out bytes.Buffer
	require.NoError(t, Explain(cfg, &out, false))
	assert.Contains(t, out.String(), "## Root.f")
	assert.Contains(t, out.String(), "the entry")

	assert.Error(t, Explain(Config{}, &out, false))
}

func TestGraph(t *testing.T) {
	dir := t.TempDir()
	rulesPath := testutils.WriteFile(t, dir, "r.yaml", "decompositions:\n  - function: Root.f\n    links: [g]\n  - function: Root.g\n    links: [title]\n")
	data := testutils.WriteFile(t, dir, "d.yaml", "title: hello\n")
	logger := logging.NewNop()

	var out bytes.Buffer
	require.NoError(t, Graph(context.Background(), Config{Rules: rulesPath, RootType: "Root"}, &out, logger))
	assert.Contains(t, out.String(), "Root_f --> Root_g")
	assert.NotContains(t, out.String(), "classDef")

	out.Reset()
	require.NoError(t, Graph(context.Background(), Config{Rules: rulesPath, Data: data, RootType: "Root"}, &out, logger))
	assert.Contains(t, out.String(), "class Root_f visited;")
	assert.Contains(t, out.String(), "class Root_g current;")
}
