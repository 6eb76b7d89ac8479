package process_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/decomp/pkg/adapters/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "worker.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
name: leaves
command: python3
args: [-m, worker]
language: python
version_command: [python3, --version]
min_version: "3.10"
env:
  PYTHONUNBUFFERED: "1"
`), 0o644))

		cfg, err := process.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "python3", cfg.Command)
		assert.Equal(t, []string{"-m", "worker"}, cfg.Args)
		assert.Equal(t, "3.10", cfg.MinVersion)
		assert.Equal(t, "1", cfg.Env["PYTHONUNBUFFERED"])
		assert.Equal(t, dir, cfg.Dir, "relative commands resolve next to the config file")
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "worker.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"command": "./leaves", "dir": "/srv"}`), 0o644))

		cfg, err := process.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "./leaves", cfg.Command)
		assert.Equal(t, "/srv", cfg.Dir)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yaml")
		require.NoError(t, os.WriteFile(path, []byte("command: x\ncomand: y\n"), 0o644))

		_, err := process.LoadConfig(path)
		assert.ErrorContains(t, err, "comand")
	})

	t.Run("command required", func(t *testing.T) {
		_, err := process.DecodeConfig(map[string]any{"name": "x"})
		assert.ErrorContains(t, err, "command is required")
	})
}
