package main

import (
	"context"
	"os"

	"github.com/aretw0/decomp/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [rules]",
	Short: "Export the rule dependency graph",
	Long: `Outputs a Mermaid diagram (graph TD) of the dependencies between decompositions.
With --data the transformation is evaluated and a failing path is highlighted.`,
	Args: cobra.MaximumNArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		_ = viper.BindPFlags(cmd.Flags())
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			viper.Set("rules", args[0])
		}

		cfg, logger, err := setup()
		if err != nil {
			fail(cfg, err)
		}
		if err := cli.Graph(context.Background(), cfg, os.Stdout, logger); err != nil {
			fail(cfg, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("rules", "r", "", "rule set file")
	graphCmd.Flags().StringP("data", "d", "", "subject graph file; highlights the failing path")
}
