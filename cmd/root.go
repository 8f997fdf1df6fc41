package cmd

import (
	"context"

	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewRootCommand returns the root command with all subcommands attached.
// Persistent flags override the values loaded into env.
func NewRootCommand(ctx context.Context, fs afero.Fs, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	cobra.EnableCommandSorting = false
	var enableClear bool

	rootCmd := &cobra.Command{
		Use:   "audiodepot",
		Short: "Store, inspect and serve audio files.",
		Long: `Audiodepot accepts audio uploads over HTTP, validates them as decodable audio
containers, records their duration, bitrate, channels and sample rate, and
serves the files and their metadata back through simple query filters.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			flags := cmd.Flags()
			if flags.Changed("storage") && !flags.Changed("db") {
				env.DBPath = env.DefaultDBPath()
			}
			if enableClear {
				env.EnableClear = "1"
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&env.StorageDir, "storage", env.StorageDir, "directory holding the uploaded audio files")
	rootCmd.PersistentFlags().StringVar(&env.DBPath, "db", env.DBPath, "path of the sqlite record database")
	rootCmd.PersistentFlags().BoolVar(&enableClear, "enable-clear", env.ClearEnabled(), "allow the development-only bulk clear")

	rootCmd.AddCommand(NewServeCommand(ctx, fs, env, logger))
	rootCmd.AddCommand(NewIngestCommand(ctx, fs, env, logger))
	rootCmd.AddCommand(NewListCommand(ctx, fs, env, logger))
	rootCmd.AddCommand(NewInfoCommand(ctx, fs, env, logger))
	rootCmd.AddCommand(NewExportCommand(ctx, fs, env, logger))
	rootCmd.AddCommand(NewClearCommand(ctx, fs, env, logger))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// openApp opens the shared components for a command run.
func openApp(fs afero.Fs, env *environment.Environment, logger *logging.Logger) (*App, error) {
	return OpenAppFn(fs, env, logger)
}
