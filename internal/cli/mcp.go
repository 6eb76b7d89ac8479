package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/decomp/pkg/adapters/mcp"
	"github.com/aretw0/decomp/pkg/rules"
)

// MCP runs the Model Context Protocol server over stdio or SSE until ctx is done.
// A configured rules file is published as a resource.
func MCP(ctx context.Context, cfg Config, transport string, port int, logger *slog.Logger) error {
	engine, err := createEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := []mcp.Option{mcp.WithLogger(logger)}
	if cfg.Rules != "" {
		rs, err := rules.LoadFile(cfg.Rules)
		if err != nil {
			return err
		}
		opts = append(opts, mcp.WithRules(rs))
	}
	srv := mcp.NewServer(engine, opts...)

	switch transport {
	case "stdio":
		logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
	}
}
