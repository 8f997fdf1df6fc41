package cmd

import (
	"fmt"

	"github.com/kdeps/audiodepot/pkg/version"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the 'version' command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "audiodepot "+version.String())
		},
	}
}
