package handler

import (
	"log/slog"
	"time"

	"housing-assistant/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns every request an id, stores it in the request
// context for the logger, and logs the start and end of the request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		startTime := time.Now()
		slog.InfoContext(ctx, "request started",
			"http_method", c.Request.Method,
			"http_path", c.Request.URL.Path,
			"remote_addr", c.ClientIP())

		c.Next()

		slog.InfoContext(ctx, "request finished",
			"http_method", c.Request.Method,
			"http_path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"bytes_written", c.Writer.Size(),
			"duration_ms", time.Since(startTime).Milliseconds())
	}
}
