package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/messages"
)

// HeaderRequestID carries the request ID back to the client.
const HeaderRequestID = "X-Request-ID"

const (
	ctxKeyRequestID = "requestID"
	ctxKeyLogger    = "logger"
)

// withRequestContext tags every request with a fresh ID and a logger bound
// to it, and logs the outcome once the handlers are done.
func withRequestContext(base *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		logger := base.With("requestID", id)
		c.Set(ctxKeyRequestID, id)
		c.Set(ctxKeyLogger, logger)
		c.Header(HeaderRequestID, id)

		start := time.Now()
		logger.Debug(messages.MsgRequestReceived, "method", c.Request.Method, "path", c.Request.URL.Path)

		c.Next()

		logger.Info(messages.MsgRequestCompleted,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"clientIP", c.ClientIP(),
		)
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

func requestLogger(c *gin.Context) *logging.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if logger, ok := v.(*logging.Logger); ok {
			return logger
		}
	}
	return logging.GetLogger()
}
