package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/decomp/internal/cli"
	"github.com/aretw0/decomp/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "decomp",
	Short: "decomp evaluates declarative decomposition rules over object graphs",
	Long: `decomp loads a rule set and a subject graph, walks the graph following the rules
and hands the collected values to leaf functions hosted in-process or by a worker.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./decomp.yaml)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.String("worker", "", "worker config file (default decomp.worker.yaml next to the rules)")
	flags.String("color", "auto", "colorize traces (auto, always, never)")
	flags.String("root-type", "Root", "type name of the subject root")

	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("worker", flags.Lookup("worker"))
	_ = viper.BindPFlag("color", flags.Lookup("color"))
	_ = viper.BindPFlag("root_type", flags.Lookup("root-type"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("decomp")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DECOMP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}
}

// setup loads the configuration and builds the logger every command uses.
func setup() (cli.Config, *slog.Logger, error) {
	cfg, err := cli.LoadConfig(viper.GetViper())
	if err != nil {
		return cli.Config{}, nil, err
	}
	return cfg, logging.New(os.Stderr, cfg.Level(), cfg.LogFormat), nil
}

// fail prints err with the configured trace style and exits.
func fail(cfg cli.Config, err error) {
	cli.PrintError(os.Stderr, err, cli.ColorEnabled(cfg.Color, os.Stderr))
	os.Exit(1)
}
