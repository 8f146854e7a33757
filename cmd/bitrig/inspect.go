package main

import (
	"github.com/aretw0/bitrig/internal/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored scenes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx *cli.SignalContext, app *cli.App) error {
			return app.List(ctx)
		})
	},
}

var modulesCmd = &cobra.Command{
	Use:   "modules <scene> <character>",
	Short: "Show a character's modules in build order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx *cli.SignalContext, app *cli.App) error {
			return app.Modules(ctx, args[0], args[1])
		})
	},
}

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <scene> <character>",
	Short: "Export the character as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the character's authoring bits grouped
by module, or with --built, of its skeleton and rig hierarchies.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		built, _ := cmd.Flags().GetBool("built")
		return withApp(cmd, func(ctx *cli.SignalContext, app *cli.App) error {
			return app.Graph(ctx, args[0], args[1], built)
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <scene> [character]",
	Short: "Check characters for consistency without building",
	Long: `Checks that each character has a root module, that its modules partition the
character's bits, and that joint and control names are unique.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		character := ""
		if len(args) > 1 {
			character = args[1]
		}
		return withApp(cmd, func(ctx *cli.SignalContext, app *cli.App) error {
			return app.Validate(ctx, args[0], character)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed [scene]",
	Short: "Store a sample biped scene",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "biped"
		if len(args) > 0 {
			name = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		return withApp(cmd, func(ctx *cli.SignalContext, app *cli.App) error {
			return app.Seed(ctx, name, force)
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd, modulesCmd, graphCmd, validateCmd, seedCmd)
	graphCmd.Flags().Bool("built", false, "Draw the built skeleton and rig instead of the authoring bits")
	seedCmd.Flags().Bool("force", false, "Overwrite an existing scene")
}
