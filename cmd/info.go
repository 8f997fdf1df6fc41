package cmd

import (
	"context"
	"encoding/json"

	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kr/pretty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the 'info' command.
func NewInfoCommand(ctx context.Context, fs afero.Fs, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "info [name]",
		Example: "$ audiodepot info file0.wav",
		Short:   "Print the stored metadata of one file as JSON",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(fs, env, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			rec, err := app.Service.GetByName(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if debug {
				_, err := pretty.Fprintf(out, "%# v\n", rec)
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "dump the stored record as a Go value, including unset fields")
	return cmd
}
