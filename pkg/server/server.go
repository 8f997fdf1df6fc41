// Package server exposes the audio depot over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kdeps/audiodepot/pkg/ingest"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/messages"
	"github.com/kdeps/audiodepot/pkg/metrics"
	"github.com/kdeps/audiodepot/pkg/query"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	corsMaxAge        = 12 * time.Hour
)

// Config holds the HTTP-facing settings.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	EnableClear    bool
	CORSOrigins    []string
	TrustedProxies []string
}

// Server wires the ingestion pipeline and the query service to gin routes.
type Server struct {
	cfg      Config
	pipeline *ingest.Pipeline
	service  *query.Service
	files    *query.FileServer
	logger   *logging.Logger
	metrics  *metrics.UploadMetrics
	router   *gin.Engine
}

// New builds the router. It does not start listening.
func New(cfg Config, pipeline *ingest.Pipeline, service *query.Service, files *query.FileServer, logger *logging.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		service:  service,
		files:    files,
		logger:   logger,
		metrics:  metrics.NewUploadMetrics(),
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(withRequestContext(s.logger), gin.Recovery())
	router.SetHTMLTemplate(loadTemplates())

	if len(s.cfg.CORSOrigins) > 0 {
		s.logger.Info(messages.MsgCORSEnabled, "origins", s.cfg.CORSOrigins)
		router.Use(cors.New(cors.Config{
			AllowOrigins:  s.cfg.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{HeaderRequestID, HeaderAudioFilename},
			MaxAge:        corsMaxAge,
		}))
	}

	if len(s.cfg.TrustedProxies) > 0 {
		s.logger.Info(messages.MsgTrustedProxies, "proxies", s.cfg.TrustedProxies)
		router.ForwardedByClientIP = true
		if err := router.SetTrustedProxies(s.cfg.TrustedProxies); err != nil {
			s.logger.Error("unable to set trusted proxies", "error", err)
		}
	} else if err := router.SetTrustedProxies(nil); err != nil {
		s.logger.Error("unable to clear trusted proxies", "error", err)
	}

	router.GET("/", s.handleHome)
	router.POST("/post", s.handleUpload)
	router.GET("/download", s.handleDownload)
	router.GET("/list", s.handleList)
	router.GET("/info", s.handleInfo)
	router.GET("/clear", s.handleClear)
	router.GET("/healthz", s.handleHealth)

	return router
}

// Run serves on cfg.Addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(messages.MsgStartServer, "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info(messages.MsgShutdownRequested)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Info(messages.MsgServerStopped)
	return nil
}
