package main

import (
	"context"
	"fmt"

	"github.com/aretw0/decomp/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var validateCmd = &cobra.Command{
	Use:   "validate [rules]",
	Short: "Check the leaf functions against a rule set",
	Long: `Starts the configured worker and verifies that every function the rule set needs
exists with the expected parameters. Nothing is evaluated.`,
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
		if err := cli.Validate(context.Background(), cfg, logger); err != nil {
			fail(cfg, err)
		}
		fmt.Println("Rules and functions match.")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("rules", "r", "", "rule set file")
}
