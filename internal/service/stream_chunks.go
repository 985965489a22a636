package service

import (
	"encoding/json"
	"strings"
)

// StreamChunkParser turns one raw streaming chunk into a StreamChunk
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}

// reasoningHosts stream the model's reasoning in a separate
// reasoning_content delta field
var reasoningHosts = []string{"integrate.api.nvidia.com", "api.deepseek.com"}

// OpenAIStreamChunkParser reads standard chunks and ignores reasoning deltas
type OpenAIStreamChunkParser struct{}

// ParseChunk implements StreamChunkParser
func (p *OpenAIStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	return decodeStreamChunk(data, false)
}

// ReasoningStreamChunkParser also surfaces reasoning_content as ThinkingContent
type ReasoningStreamChunkParser struct{}

// ParseChunk implements StreamChunkParser
func (p *ReasoningStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	return decodeStreamChunk(data, true)
}

// IsReasoningProvider reports whether baseURL belongs to a provider that
// streams reasoning_content
func IsReasoningProvider(baseURL string) bool {
	for _, host := range reasoningHosts {
		if strings.Contains(baseURL, host) {
			return true
		}
	}
	return false
}

func chunkParserFor(baseURL string) StreamChunkParser {
	if IsReasoningProvider(baseURL) {
		return &ReasoningStreamChunkParser{}
	}
	return &OpenAIStreamChunkParser{}
}

type rawStreamChunk struct {
	Choices []struct {
		Delta struct {
			Role             string `json:"role"`
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// decodeStreamChunk reads the first choice; a chunk without choices is empty
func decodeStreamChunk(data []byte, withReasoning bool) (*StreamChunk, error) {
	var raw rawStreamChunk
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{}
	if len(raw.Choices) == 0 {
		return chunk, nil
	}

	choice := raw.Choices[0]
	chunk.Role = choice.Delta.Role
	chunk.Content = choice.Delta.Content
	if withReasoning {
		chunk.ThinkingContent = choice.Delta.ReasoningContent
	}
	chunk.Done = choice.FinishReason != nil && *choice.FinishReason != ""
	return chunk, nil
}
