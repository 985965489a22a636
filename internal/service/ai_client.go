package service

import (
	"context"
)

// ChatClient is the interface for OpenAI-compatible chat providers
type ChatClient interface {
	// Complete sends the messages and returns the full reply (non-streaming)
	Complete(ctx context.Context, messages []ChatMessage) (string, error)

	// Stream sends the messages with streaming enabled. The callback receives
	// every chunk as it arrives; the accumulated reply is returned at the end.
	Stream(ctx context.Context, messages []ChatMessage, callback StreamCallback) (string, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// Chat message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g., DeepSeek)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}

// StreamCallback is called for each chunk in streaming mode
type StreamCallback func(chunk *StreamChunk) error

// Ensure OpenAIClient implements ChatClient
var _ ChatClient = (*OpenAIClient)(nil)
