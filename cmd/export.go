package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the 'export' command, the CLI counterpart of
// /download.
func NewExportCommand(ctx context.Context, fs afero.Fs, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "export [name]",
		Example: "$ audiodepot export file0.wav -o ./file0.wav",
		Short:   "Copy a stored audio file out of the depot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(fs, env, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			dest := output
			if dest == "" {
				dest = filepath.Base(args[0])
			}
			f, err := fs.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", dest, err)
			}

			rec, err := app.Files.Copy(ctx, f, args[0])
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = fs.Remove(dest)
				return err
			}

			size := "?"
			if info, statErr := fs.Stat(dest); statErr == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ "+rec.Filename)+
				dimStyle.Render(fmt.Sprintf(" -> %s (%s) from %s", dest, size, app.Pipeline.Root())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination path (defaults to the stored name)")
	return cmd
}
