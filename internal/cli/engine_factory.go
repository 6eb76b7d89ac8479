package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/decomp"
	"github.com/aretw0/decomp/pkg/adapters/inproc"
	"github.com/aretw0/decomp/pkg/adapters/process"
	"github.com/aretw0/decomp/pkg/ports"
)

// DefaultWorkerFile is picked up next to the rules file when no worker is configured.
const DefaultWorkerFile = "decomp.worker.yaml"

// createRunner starts the configured worker. Without one, leaf functions are unavailable
// and only decompositions that fall back to attributes can be evaluated.
func createRunner(ctx context.Context, cfg Config, logger *slog.Logger) (ports.Runner, error) {
	path := cfg.Worker
	if path == "" && cfg.Rules != "" {
		// Smart convention: a worker config sitting next to the rules is used automatically.
		candidate := filepath.Join(filepath.Dir(cfg.Rules), DefaultWorkerFile)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path == "" {
		logger.Debug("no worker configured, leaf functions are unavailable")
		return inproc.New(), nil
	}

	wc, err := process.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("starting worker", "config", path, "command", wc.Command)
	return process.NewRunner(ctx, wc, process.WithLogger(logger))
}

// createEngine initializes an engine with standard CLI conventions.
func createEngine(ctx context.Context, cfg Config, logger *slog.Logger, opts ...decomp.Option) (*decomp.Engine, error) {
	runner, err := createRunner(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	engineOpts := []decomp.Option{
		decomp.WithLogger(logger),
		decomp.WithRootType(cfg.RootType),
	}
	engineOpts = append(engineOpts, opts...)

	engine, err := decomp.New(runner, engineOpts...)
	if err != nil {
		_ = runner.Finalize()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
