package cmd

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kdeps/audiodepot/pkg/server"
)

// Injectable functions for testability (shared across cmd package)
var (
	// Component wiring
	OpenAppFn = OpenApp

	// HTTP server
	RunServerFn = func(ctx context.Context, srv *server.Server) error {
		return srv.Run(ctx)
	}
	SetGinModeFn = gin.SetMode
)
