package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"housing-assistant/internal/model"

	"github.com/google/uuid"
)

// AssistantService answers housing questions: retrieve, compose, chat
type AssistantService struct {
	retriever    *Retriever
	store        ListingStore
	composer     *Composer
	chat         ChatClient
	defaultLimit int
	maxLimit     int
}

// NewAssistantService creates the request pipeline
func NewAssistantService(
	retriever *Retriever,
	store ListingStore,
	composer *Composer,
	chat ChatClient,
	defaultLimit, maxLimit int,
) *AssistantService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &AssistantService{
		retriever:    retriever,
		store:        store,
		composer:     composer,
		chat:         chat,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// SearchEventCallback is called for streaming answer events
type SearchEventCallback func(event string, data any) error

// ChatEnabled reports whether answers can be generated
func (s *AssistantService) ChatEnabled() bool {
	return s.chat != nil && s.chat.IsEnabled()
}

// Extract returns the facets found in a query
func (s *AssistantService) Extract(query string) *model.FacetSet {
	return s.retriever.Extract(query)
}

// Search runs retrieval only, without a chat call
func (s *AssistantService) Search(ctx context.Context, req *model.AskRequest) (*model.SearchResponse, error) {
	startTime := time.Now()

	result, err := s.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	return &model.SearchResponse{
		Listings:  result.Listings,
		LocalData: s.composer.RenderTable(result.Listings),
		Facets:    result.Facets,
		Effective: result.Effective,
		Strategy:  result.Strategy,
		Keyword:   result.Keyword,
		Attempts:  result.Attempts,
		SearchID:  uuid.NewString(),
		Took:      time.Since(startTime).Milliseconds(),
	}, nil
}

// Ask retrieves matching listings and asks the chat model to answer from them
func (s *AssistantService) Ask(ctx context.Context, req *model.AskRequest) (*model.AskResponse, error) {
	startTime := time.Now()
	if !s.ChatEnabled() {
		return nil, ErrChatUnavailable
	}

	result, err := s.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	messages := s.composer.BuildMessages(result.Listings, req.Text())
	answer, err := s.chat.Complete(ctx, messages)
	if err != nil {
		return nil, wrapChatError(ctx, err)
	}

	return s.buildResponse(answer, result, uuid.NewString(), startTime), nil
}

// AskStream is Ask with progress events: start, facets, listings, then
// thinking and delta chunks from the model, and finally answer
func (s *AssistantService) AskStream(ctx context.Context, req *model.AskRequest, callback SearchEventCallback) (*model.AskResponse, error) {
	startTime := time.Now()
	if !s.ChatEnabled() {
		return nil, ErrChatUnavailable
	}

	searchID := uuid.NewString()
	if err := callback("start", map[string]any{
		"search_id": searchID,
		"query":     req.Text(),
	}); err != nil {
		return nil, err
	}

	result, err := s.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := callback("facets", map[string]any{
		"facets":           result.Facets,
		"effective_facets": result.Effective,
	}); err != nil {
		return nil, err
	}

	localData := s.composer.RenderTable(result.Listings)
	if err := callback("listings", map[string]any{
		"listings":   result.Listings,
		"local_data": localData,
		"strategy":   result.Strategy,
	}); err != nil {
		return nil, err
	}

	messages := s.composer.BuildMessages(result.Listings, req.Text())
	answer, err := s.chat.Stream(ctx, messages, func(chunk *StreamChunk) error {
		if chunk.ThinkingContent != "" {
			if err := callback("thinking", map[string]any{"content": chunk.ThinkingContent}); err != nil {
				return err
			}
		}
		if chunk.Content != "" {
			return callback("delta", map[string]any{"content": chunk.Content})
		}
		return nil
	})
	if err != nil {
		return nil, wrapChatError(ctx, err)
	}

	resp := s.buildResponse(answer, result, searchID, startTime)
	if err := callback("answer", resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetListing retrieves a single listing by ID, nil when absent
func (s *AssistantService) GetListing(ctx context.Context, listingID int64) (*model.Listing, error) {
	listing, err := s.store.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	return listing, nil
}

func (s *AssistantService) retrieve(ctx context.Context, req *model.AskRequest) (*RetrieveResult, error) {
	var city *string
	if c := strings.TrimSpace(req.City); c != "" {
		city = &c
	}

	return s.retriever.Retrieve(ctx, RetrieveRequest{
		Query:    req.Text(),
		City:     city,
		MinPrice: req.MinPrice.Ptr(),
		MaxPrice: req.MaxPrice.Ptr(),
		Limit:    s.resolveLimit(req.TopK),
	})
}

// resolveLimit applies the default to a missing or non-positive top_k and
// caps it at the configured maximum
func (s *AssistantService) resolveLimit(topK model.OptionalInt) int {
	if !topK.Valid || topK.Value <= 0 {
		return s.defaultLimit
	}
	if topK.Value > int64(s.maxLimit) {
		return s.maxLimit
	}
	return int(topK.Value)
}

func (s *AssistantService) buildResponse(answer string, result *RetrieveResult, searchID string, startTime time.Time) *model.AskResponse {
	return &model.AskResponse{
		Answer:    answer,
		LocalData: s.composer.RenderTable(result.Listings),
		Listings:  result.Listings,
		Facets:    result.Facets,
		Strategy:  result.Strategy,
		SearchID:  searchID,
		Took:      time.Since(startTime).Milliseconds(),
	}
}

func wrapChatError(ctx context.Context, err error) error {
	if errors.Is(err, ErrChatUnavailable) {
		return err
	}
	slog.ErrorContext(ctx, "chat completion failed", "error", err)
	return fmt.Errorf("%w: %w", ErrChat, err)
}
