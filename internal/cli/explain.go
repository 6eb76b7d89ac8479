package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/decomp/internal/presentation/graph"
	"github.com/aretw0/decomp/internal/presentation/tui"
	"github.com/aretw0/decomp/pkg/adapters/yamlgraph"
	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/rules"
)

// Explain prints a markdown description of the rule set, rendered for the terminal when styled.
func Explain(cfg Config, out io.Writer, styled bool) error {
	if cfg.Rules == "" {
		return fmt.Errorf("rules are required")
	}
	rs, err := rules.LoadFile(cfg.Rules)
	if err != nil {
		return err
	}
	render, err := tui.NewRenderer(styled)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	text, err := render(tui.Explain(rs))
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, text)
	return err
}

// Graph prints the Mermaid dependency graph of the rule set. When data is configured the
// transformation is evaluated first and, if it fails, the failing path is highlighted.
func Graph(ctx context.Context, cfg Config, out io.Writer, logger *slog.Logger) error {
	if cfg.Rules == "" {
		return fmt.Errorf("rules are required")
	}
	rs, err := rules.LoadFile(cfg.Rules)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if cfg.Data != "" {
		root, err := yamlgraph.LoadFile(cfg.Data)
		if err != nil {
			return err
		}
		engine, err := createEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer engine.Close()

		if _, err := engine.Transform(ctx, rs, root); err != nil {
			var te *diag.TransformError
			if !errors.As(err, &te) {
				return err
			}
			logger.Info("transformation failed, highlighting its trace", "err", te.Err)
			overlay = graph.OverlayFromError(te)
		}
	}

	_, err = io.WriteString(out, graph.GenerateMermaid(rs, overlay))
	return err
}
