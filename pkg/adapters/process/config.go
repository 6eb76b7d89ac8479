package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultVersionPattern extracts a dotted version number from a version probe's output.
const DefaultVersionPattern = `(\d+\.\d+(?:\.\d+)?)`

// Config describes how to start a worker.
//
//	name: python-leaves
//	command: python3
//	args: [-m, decomp_worker, leaves.py]
//	language: python
//	version_command: [python3, --version]
//	min_version: "3.10"
type Config struct {
	Name     string            `mapstructure:"name" yaml:"name" json:"name"`
	Command  string            `mapstructure:"command" yaml:"command" json:"command"`
	Args     []string          `mapstructure:"args" yaml:"args" json:"args"`
	Env      map[string]string `mapstructure:"env" yaml:"env" json:"env"`
	Dir      string            `mapstructure:"dir" yaml:"dir" json:"dir"`
	Language string            `mapstructure:"language" yaml:"language" json:"language"`

	// VersionCommand is run once before the worker starts. Leave it empty to skip the check.
	VersionCommand []string `mapstructure:"version_command" yaml:"version_command" json:"version_command"`
	VersionPattern string   `mapstructure:"version_pattern" yaml:"version_pattern" json:"version_pattern"`
	MinVersion     string   `mapstructure:"min_version" yaml:"min_version" json:"min_version"`
}

func (c Config) language() string {
	if c.Language == "" {
		return "external"
	}
	return c.Language
}

func (c Config) environ() []string {
	env := os.Environ()
	for k, v := range c.Env {
		env = append(env, k+"="+v)
	}
	return env
}

// LoadConfig reads a worker configuration file (YAML or JSON).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read worker config: %w", err)
	}

	var raw map[string]any
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg, err := DecodeConfig(raw)
	if err != nil {
		return Config{}, fmt.Errorf("invalid worker config %s: %w", path, err)
	}
	if cfg.Dir == "" {
		cfg.Dir = filepath.Dir(path)
	}
	return cfg, nil
}

// DecodeConfig builds a Config from a generic map, such as a section of a larger config file.
func DecodeConfig(raw map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, err
	}
	if cfg.Command == "" {
		return Config{}, fmt.Errorf("command is required")
	}
	return cfg, nil
}
