package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/decomp"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of decomp",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("decomp version %s\n", strings.TrimSpace(decomp.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
