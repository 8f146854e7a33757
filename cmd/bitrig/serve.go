package main

import (
	"github.com/aretw0/bitrig/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP build server",
	Long: `Exposes the stored scenes over a JSON API: list characters, inspect modules,
trigger builds. Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		return withApp(cmd, func(ctx *cli.SignalContext, app *cli.App) error {
			return app.Serve(ctx, ":"+port)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
