package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/aretw0/decomp/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run [rules] [data]",
	Short: "Evaluate a rule set over a subject graph",
	Long: `Loads the rule set and the subject graph (YAML or JSON), evaluates the entry
decomposition and prints the result on stdout. Failures are printed with their trace.`,
	Args: cobra.MaximumNArgs(2),
	PreRun: func(cmd *cobra.Command, args []string) {
		// Bound here rather than in init: several commands share the rules key.
		_ = viper.BindPFlags(cmd.Flags())
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			viper.Set("rules", args[0])
		}
		if len(args) > 1 {
			viper.Set("data", args[1])
		}

		cfg, logger, err := setup()
		if err != nil {
			fail(cfg, err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := cli.Run(ctx, cfg, os.Stdout, logger); err != nil {
			stop()
			fail(cfg, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("rules", "r", "", "rule set file")
	runCmd.Flags().StringP("data", "d", "", "subject graph file")
	runCmd.Flags().Bool("validate", false, "check the leaf functions before evaluating")
	runCmd.Flags().StringP("output", "o", "json", "result format (json or yaml)")
}
