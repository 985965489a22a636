package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// BuildInfo identifies the running binary
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// HealthHandler serves liveness and version information
type HealthHandler struct {
	db          Pinger
	build       BuildInfo
	chatEnabled bool
}

// NewHealthHandler creates a health handler
func NewHealthHandler(db Pinger, build BuildInfo, chatEnabled bool) *HealthHandler {
	return &HealthHandler{db: db, build: build, chatEnabled: chatEnabled}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, dbStatus := "healthy", "up"
	code := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check: database unreachable", "error", err)
			status, dbStatus = "degraded", "down"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":       status,
		"service":      "housing-assistant",
		"database":     dbStatus,
		"chat_enabled": h.chatEnabled,
		"version":      h.build.Version,
	})
}

// Version handles GET /version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}
