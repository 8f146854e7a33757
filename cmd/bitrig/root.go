package main

import (
	"fmt"
	"os"

	"github.com/aretw0/bitrig/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bitrig",
	Short: "bitrig builds joint and control rigs from modular authoring scenes",
	Long: `bitrig resolves the modules of each character in a stored scene and builds
their skeleton and control hierarchies. Rebuilding a wired character is a no-op.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Configuration file (default bitrig.yaml)")
	f.String("dir", "", "Directory of the file scene store")
	f.String("redis", "", "Redis address; stores scenes in Redis instead of files")
	f.String("order", "", "Module priority order: ascending or descending")
	f.Bool("best-effort", false, "Keep building the remaining modules after a failure")
	f.String("log-level", "", "Log level: debug, info, warn or error")
	f.Bool("debug", false, "Log every build event")
}

// newApp builds the application from the global flags.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	f := cmd.Flags()
	opts := cli.Options{}
	opts.ConfigPath, _ = f.GetString("config")
	opts.Dir, _ = f.GetString("dir")
	opts.Redis, _ = f.GetString("redis")
	opts.Order, _ = f.GetString("order")
	opts.LogLevel, _ = f.GetString("log-level")
	opts.Debug, _ = f.GetBool("debug")
	if f.Changed("best-effort") {
		v, _ := f.GetBool("best-effort")
		opts.BestEffort = &v
	}
	return cli.NewApp(opts, cmd.OutOrStdout())
}

// withApp runs fn with an App bound to a signal-aware context.
func withApp(cmd *cobra.Command, fn func(*cli.SignalContext, *cli.App) error) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cli.NewSignalContext(cmd.Context())
	defer ctx.Cancel()
	return fn(ctx, app)
}
