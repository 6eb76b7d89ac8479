package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/decomp/internal/validator"
	"github.com/aretw0/decomp/pkg/adapters/yamlgraph"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/rules"
	"gopkg.in/yaml.v3"
)

// Run loads the rules and the subject, evaluates the transformation and writes the result.
func Run(ctx context.Context, cfg Config, out io.Writer, logger *slog.Logger) error {
	if cfg.Rules == "" || cfg.Data == "" {
		return fmt.Errorf("both rules and data are required")
	}
	rs, err := rules.LoadFile(cfg.Rules)
	if err != nil {
		return err
	}
	root, err := yamlgraph.LoadFile(cfg.Data)
	if err != nil {
		return err
	}

	engine, err := createEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	if cfg.Validate {
		if err := engine.Validate(ctx, rs); err != nil {
			return err
		}
	}

	v, err := engine.Transform(ctx, rs, root)
	if err != nil {
		return err
	}
	return writeResult(out, cfg.Output, model.Plain(v))
}

// Validate checks the configured worker against the rules without evaluating anything.
func Validate(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if cfg.Rules == "" {
		return fmt.Errorf("rules are required")
	}
	rs, err := rules.LoadFile(cfg.Rules)
	if err != nil {
		return err
	}
	for _, w := range validator.Lint(rs) {
		logger.Warn(w)
	}
	engine, err := createEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()
	return engine.Validate(ctx, rs)
}

func writeResult(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
