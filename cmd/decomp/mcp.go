package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/decomp/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP Server exposing the transform, validate and
explain_rules tools. A rules file given with --rules is published as decomp://rules.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		_ = viper.BindPFlag("rules", cmd.Flags().Lookup("rules"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, logger, err := setup()
		if err != nil {
			fail(cfg, err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Logs already go to stderr, stdout carries JSON-RPC.
		if err := cli.MCP(ctx, cfg, transport, port, logger); err != nil {
			stop()
			fail(cfg, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("rules", "r", "", "rule set to publish as a resource")
	mcpCmd.Flags().StringP("transport", "t", "stdio", "transport (stdio or sse)")
	mcpCmd.Flags().IntP("port", "p", 8081, "port for the sse transport")
}
