// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/meet-service/internal/logging"
)

// RequestLogger logs HTTP requests and responses with the request's context
// attributes. Health check endpoints (/livez and /readyz) are excluded to
// reduce noise.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()

		path := c.Request.URL.Path
		isHealthCheck := path == "/livez" || path == "/readyz"

		ctx := c.Request.Context()
		ctx = logging.AppendCtx(ctx, slog.String("method", c.Request.Method))
		ctx = logging.AppendCtx(ctx, slog.String("path", path))
		ctx = logging.AppendCtx(ctx, slog.String("remote_addr", c.ClientIP()))
		if requestID := GetRequestID(c); requestID != "" {
			ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))
		}
		if principal := GetPrincipal(c); principal != "" {
			ctx = logging.AppendCtx(ctx, slog.String("principal", principal))
		}
		c.Request = c.Request.WithContext(ctx)

		if !isHealthCheck {
			slog.InfoContext(ctx, "HTTP request")
		}

		c.Next()

		if !isHealthCheck {
			slog.InfoContext(ctx, "HTTP response",
				"status", c.Writer.Status(),
				"duration", time.Since(start).String(),
			)
		}
	}
}
