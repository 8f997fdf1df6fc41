package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kdeps/audiodepot/pkg/audio"
	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/query"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewListCommand creates the 'list' command. Its flags mirror the /list
// query parameters.
func NewListCommand(ctx context.Context, fs afero.Fs, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var (
		asJSON  bool
		verbose bool
		filters = map[string]*string{}
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Example: "$ audiodepot list --channels 2 --min-duration 30",
		Short:   "List stored audio files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := url.Values{}
			for key, v := range filters {
				if *v != "" {
					values.Set(key, *v)
				}
			}
			if verbose {
				values.Set(query.ParamVerbose, "true")
			}
			params, err := query.ParseParams(values)
			if err != nil {
				return err
			}

			app, err := openApp(fs, env, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			if asJSON {
				listing, err := app.Service.List(ctx, params)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(listing)
			}

			records, err := app.Service.Records(ctx, params.Filter)
			if err != nil {
				return err
			}
			audio.SortByFilename(records)
			printRecords(out, records)
			return nil
		},
	}

	flagParams := []struct{ flag, param, usage string }{
		{"min-duration", query.ParamMinDuration, "minimum duration in seconds"},
		{"max-duration", query.ParamMaxDuration, "maximum duration in seconds"},
		{"min-bitrate", query.ParamMinBitrate, "minimum bitrate in bits per second"},
		{"max-bitrate", query.ParamMaxBitrate, "maximum bitrate in bits per second"},
		{"channels", query.ParamChannels, "exact channel count"},
		{"sample-rate", query.ParamSampleRate, "exact sample rate in Hz"},
	}
	for _, fp := range flagParams {
		filters[fp.param] = cmd.Flags().String(fp.flag, "", fp.usage)
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "with --json, print full records instead of filenames")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the /list JSON body")

	return cmd
}

func printRecords(out io.Writer, records []audio.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, dimStyle.Render("no audio files stored"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-32s %10s %12s %4s %10s", "FILENAME", "DURATION", "BITRATE", "CH", "RATE")))
	for _, rec := range records {
		fmt.Fprintf(out, "%-32s %10s %12s %4s %10s\n",
			rec.Filename,
			durationText(rec.Duration),
			siText(rec.Bitrate, "bps"),
			intText(rec.Channels),
			siText(rec.SampleRate, "Hz"),
		)
	}
	fmt.Fprintln(out, dimStyle.Render(humanize.Comma(int64(len(records)))+" file(s)"))
}

func durationText(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return (time.Duration(*seconds*float64(time.Second))).Round(time.Millisecond).String()
}

func siText(v *int, unit string) string {
	if v == nil {
		return "-"
	}
	return humanize.SIWithDigits(float64(*v), 1, unit)
}

func intText(v *int) string {
	if v == nil {
		return "-"
	}
	return humanize.Comma(int64(*v))
}
