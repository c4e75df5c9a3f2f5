package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const ctxLoggerKey = "logger"

// RequestLogger makes logger available to later middleware and, when accessLog is
// set, logs one line per request.
func RequestLogger(logger *logrus.Logger, accessLog bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxLoggerKey, logger)
		if !accessLog || c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        normalizePath(c),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  c.GetString("request_id"),
			"ip":          ipFromCtx(c),
		})
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			entry = entry.WithField("user_id", uid)
		}
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

func loggerFrom(c *gin.Context) *logrus.Logger {
	if v, ok := c.Get(ctxLoggerKey); ok {
		if l, ok := v.(*logrus.Logger); ok {
			return l
		}
	}
	return nil
}
