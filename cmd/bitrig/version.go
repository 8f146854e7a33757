package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/bitrig"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bitrig",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bitrig version %s\n", strings.TrimSpace(bitrig.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
