package cmd

import (
	"context"
	"fmt"

	audioErrors "github.com/kdeps/audiodepot/pkg/errors"
	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/messages"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewClearCommand creates the development-only 'clear' command.
func NewClearCommand(ctx context.Context, fs afero.Fs, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Example: "$ audiodepot clear --enable-clear",
		Short:   "Delete every stored file and record (development only)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !env.ClearEnabled() {
				return audioErrors.New(audioErrors.ErrDisabled, messages.MsgClearDisabled)
			}

			app, err := openApp(fs, env, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.Pipeline.Clear(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("cleared %d record(s)", n)))
			return nil
		},
	}
}
