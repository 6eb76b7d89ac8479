package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/decomp/internal/cli"
	"github.com/aretw0/decomp/internal/presentation/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the engine over HTTP: POST /transform evaluates an inline rule set over an
inline subject, /metrics serves Prometheus metrics and /healthz reports the version.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		_ = viper.BindPFlags(cmd.Flags())
	},
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := setup()
		if err != nil {
			fail(cfg, err)
		}

		tui.PrintBanner(os.Stderr, cli.ColorEnabled(cfg.Color, os.Stderr))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := cli.Serve(ctx, cfg, logger); err != nil {
			stop()
			fail(cfg, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "address to listen on")
}
