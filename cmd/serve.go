package cmd

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kdeps/audiodepot/pkg/environment"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/messages"
	"github.com/kdeps/audiodepot/pkg/server"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the 'serve' command.
func NewServeCommand(ctx context.Context, fs afero.Fs, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Example: "$ audiodepot serve --port 5000",
		Short:   "Run the HTTP server",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if env.IsDebug() {
				SetGinModeFn(gin.DebugMode)
			} else {
				SetGinModeFn(gin.ReleaseMode)
			}

			app, err := openApp(fs, env, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if !env.ClearEnabled() {
				logger.Debug(messages.MsgClearDisabled)
			}

			srv := server.New(ServerConfig(env), app.Pipeline, app.Service, app.Files, logger)
			return RunServerFn(ctx, srv)
		},
	}

	cmd.Flags().StringVar(&env.Host, "host", env.Host, "address to listen on")
	cmd.Flags().IntVarP(&env.Port, "port", "p", env.Port, "port to listen on")
	return cmd
}

// ServerConfig derives the HTTP settings from env.
func ServerConfig(env *environment.Environment) server.Config {
	return server.Config{
		Addr:           env.Addr(),
		MaxUploadBytes: env.MaxUploadBytes(),
		EnableClear:    env.ClearEnabled(),
		CORSOrigins:    env.CORSOriginList(),
		TrustedProxies: env.TrustedProxyList(),
	}
}
