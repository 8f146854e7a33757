package main

import (
	"github.com/aretw0/bitrig/internal/cli"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <scene> [character]",
	Short: "Build the rig of one or every character in a scene",
	Long: `Loads the scene, builds the skeleton and control hierarchies of the character
(or of every character), prints a per-module summary and stores the result.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		showTree, _ := cmd.Flags().GetBool("tree")
		character := ""
		if len(args) > 1 {
			character = args[1]
		}
		return withApp(cmd, func(ctx *cli.SignalContext, app *cli.App) error {
			return app.Build(ctx, args[0], character, showTree)
		})
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Bool("tree", false, "Print the built skeleton and rig hierarchies")
}
