package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"housing-assistant/internal/model"
	"housing-assistant/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles question, search and listing HTTP requests
type SearchHandler struct {
	assistant *service.AssistantService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(assistant *service.AssistantService) *SearchHandler {
	return &SearchHandler{assistant: assistant}
}

// Ask handles POST /api/v1/ask
func (h *SearchHandler) Ask(c *gin.Context) {
	req, ok := bindAskRequest(c)
	if !ok {
		return
	}

	response, err := h.assistant.Ask(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// AskStream handles POST /api/v1/ask/stream - SSE streaming answer
func (h *SearchHandler) AskStream(c *gin.Context) {
	req, ok := bindAskRequest(c)
	if !ok {
		return
	}

	// Fail before switching to SSE so the client gets a plain status code
	if !h.assistant.ChatEnabled() {
		writeError(c, service.ErrChatUnavailable)
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	_, err := h.assistant.AskStream(ctx, req, func(event string, data any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})

	if err != nil {
		status, message := classifyError(err)
		slog.WarnContext(ctx, "streaming answer failed", "status", status, "error", err)
		sendSSE(c, "error", gin.H{"error": message, "details": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// Search handles POST /api/v1/search - retrieval without a chat call
func (h *SearchHandler) Search(c *gin.Context) {
	req, ok := bindAskRequest(c)
	if !ok {
		return
	}

	response, err := h.assistant.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Extract handles POST /api/v1/extract
func (h *SearchHandler) Extract(c *gin.Context) {
	var req model.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.assistant.Extract(req.Query))
}

// GetListing handles GET /api/v1/listings/:id
func (h *SearchHandler) GetListing(c *gin.Context) {
	listingIDStr := c.Param("id")
	listingID, err := strconv.ParseInt(listingIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	listing, err := h.assistant.GetListing(c.Request.Context(), listingID)
	if err != nil {
		writeError(c, err)
		return
	}

	if listing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

func bindAskRequest(c *gin.Context) (*model.AskRequest, bool) {
	var req model.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return nil, false
	}
	if strings.TrimSpace(req.Text()) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return nil, false
	}
	return &req, true
}

// classifyError maps pipeline errors to an HTTP status and a short message
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrChatUnavailable):
		return http.StatusServiceUnavailable, service.ErrChatUnavailable.Error()
	case errors.Is(err, service.ErrChat):
		return http.StatusBadGateway, service.ErrChat.Error()
	case errors.Is(err, service.ErrRetrieval):
		return http.StatusInternalServerError, service.ErrRetrieval.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(c *gin.Context, err error) {
	status, message := classifyError(err)
	slog.ErrorContext(c.Request.Context(), "request failed",
		"path", c.FullPath(),
		"status", status,
		"error", err)
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
