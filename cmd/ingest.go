package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/ingest"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewIngestCommand creates the 'ingest' command. Local files go through the
// same pipeline as uploads, declaring their base name.
func NewIngestCommand(ctx context.Context, fs afero.Fs, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "ingest [file...]",
		Aliases: []string{"i"},
		Example: "$ audiodepot ingest ./take1.wav ./take2.flac",
		Short:   "Validate and store local audio files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(fs, env, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			var failed int
			for _, path := range args {
				name, err := ingestFile(ctx, fs, app.Pipeline, path)
				if err != nil {
					failed++
					fmt.Fprintln(out, errorStyle.Render("✗ "+path+": "+err.Error()))
					continue
				}
				fmt.Fprintln(out, successStyle.Render("✓ "+path)+dimStyle.Render(" -> "+name))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files rejected", failed, len(args))
			}
			return nil
		},
	}
}

func ingestFile(ctx context.Context, fs afero.Fs, pipeline *ingest.Pipeline, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	up := ingest.FromFile(f, filepath.Base(path))
	defer up.Close()

	rec, err := pipeline.Ingest(ctx, up)
	if err != nil {
		return "", err
	}
	return rec.Filename, nil
}
