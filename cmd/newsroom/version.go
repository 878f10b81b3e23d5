package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of newsroom",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsroom version %s\n", strings.TrimSpace(Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
