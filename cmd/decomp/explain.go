package main

import (
	"os"

	"github.com/aretw0/decomp/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var explainCmd = &cobra.Command{
	Use:   "explain [rules]",
	Short: "Describe a rule set",
	Long:  `Prints every decomposition with its leaf function signature and links, rendered as markdown.`,
	Args:  cobra.MaximumNArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		_ = viper.BindPFlags(cmd.Flags())
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			viper.Set("rules", args[0])
		}

		cfg, _, err := setup()
		if err != nil {
			fail(cfg, err)
		}
		if err := cli.Explain(cfg, os.Stdout, cli.ColorEnabled(cfg.Color, os.Stdout)); err != nil {
			fail(cfg, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().StringP("rules", "r", "", "rule set file")
}
