package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"housing-assistant/internal/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient handles OpenAI-compatible chat completions
type OpenAIClient struct {
	config      config.LLMConfig
	client      openai.Client
	extraBody   map[string]any
	chunkParser StreamChunkParser // Provider-specific chunk parser
}

// NewOpenAIClient creates a chat client for the configured endpoint,
// picking the stream chunk parser from the base URL
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	baseURL := cfg.APIBase
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(cfg.Timeout)*time.Second))
	}

	var extraBody map[string]any
	if cfg.ChatExtraBody != "" {
		if err := json.Unmarshal([]byte(cfg.ChatExtraBody), &extraBody); err != nil {
			slog.Warn("ignoring invalid OPENAI_CHAT_EXTRA_BODY", "error", err)
			extraBody = nil
		}
	}

	parser := chunkParserFor(cfg.APIBase)
	slog.Debug("chat client configured",
		"base_url", cfg.APIBase,
		"model", cfg.ChatModel,
		"parser", fmt.Sprintf("%T", parser),
		"enabled", cfg.Enabled)

	return &OpenAIClient{
		config:      cfg,
		client:      openai.NewClient(opts...),
		extraBody:   extraBody,
		chunkParser: parser,
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// Complete performs a blocking chat completion and returns the reply text
func (c *OpenAIClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if !c.config.Enabled {
		return "", ErrChatUnavailable
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, c.buildParams(messages), c.requestOptions()...)
	if err != nil {
		logAPIError(ctx, err)
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in chat completion response")
	}

	slog.DebugContext(ctx, "chat completed",
		"model", c.config.ChatModel,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

// Stream performs a streaming chat completion. Each chunk is parsed by the
// provider-specific parser and handed to the callback; the concatenated
// content is returned once the stream ends.
func (c *OpenAIClient) Stream(ctx context.Context, messages []ChatMessage, callback StreamCallback) (string, error) {
	if !c.config.Enabled {
		return "", ErrChatUnavailable
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, c.buildParams(messages), c.requestOptions()...)
	defer stream.Close()

	var answer strings.Builder
	for stream.Next() {
		raw := stream.Current().RawJSON()
		chunk, err := c.chunkParser.ParseChunk([]byte(raw))
		if err != nil {
			slog.WarnContext(ctx, "failed to parse stream chunk", "error", err)
			continue
		}

		answer.WriteString(chunk.Content)
		if err := callback(chunk); err != nil {
			return answer.String(), fmt.Errorf("callback error: %w", err)
		}
	}

	if err := stream.Err(); err != nil {
		logAPIError(ctx, err)
		return answer.String(), fmt.Errorf("chat completion stream: %w", err)
	}
	return answer.String(), nil
}

func (c *OpenAIClient) buildParams(messages []ChatMessage) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    c.config.ChatModel,
		Messages: convertMessages(messages),
	}
	if c.config.ChatTemperature > 0 {
		params.Temperature = openai.Float(c.config.ChatTemperature)
	}
	if c.config.ChatTopP > 0 {
		params.TopP = openai.Float(c.config.ChatTopP)
	}
	if c.config.ChatMaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.config.ChatMaxTokens))
	}
	return params
}

// requestOptions merges the configured extra body fields into the request,
// e.g. {"chat_template_kwargs":{"thinking":true}}
func (c *OpenAIClient) requestOptions() []option.RequestOption {
	opts := make([]option.RequestOption, 0, len(c.extraBody))
	for key, value := range c.extraBody {
		opts = append(opts, option.WithJSONSet(key, value))
	}
	return opts
}

func convertMessages(msgs []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

func logAPIError(ctx context.Context, err error) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		slog.ErrorContext(ctx, "chat provider returned an error",
			"status_code", apiErr.StatusCode,
			"error_type", apiErr.Type,
			"error_code", apiErr.Code)
		return
	}
	slog.ErrorContext(ctx, "chat request failed", "error", err)
}
