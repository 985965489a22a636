package service

import (
	"context"
	"errors"
	"testing"

	"housing-assistant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	enabled  bool
	reply    string
	chunks   []StreamChunk
	err      error
	messages []ChatMessage
}

func (f *fakeChat) IsEnabled() bool { return f.enabled }

func (f *fakeChat) Complete(_ context.Context, messages []ChatMessage) (string, error) {
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeChat) Stream(_ context.Context, messages []ChatMessage, callback StreamCallback) (string, error) {
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	var answer string
	for i := range f.chunks {
		answer += f.chunks[i].Content
		if err := callback(&f.chunks[i]); err != nil {
			return answer, err
		}
	}
	return answer, nil
}

func newTestAssistant(store *stubStore, chat ChatClient) *AssistantService {
	return NewAssistantService(newTestRetriever(store), store, NewComposer(""), chat, 5, 20)
}

func TestAssistantService_Ask(t *testing.T) {
	store := &stubStore{byKeyword: map[string][]model.Listing{
		"公寓": {{ID: 1, Title: "朝南公寓", City: "上海", Price: 4500}},
	}}
	chat := &fakeChat{enabled: true, reply: "推荐朝南公寓"}

	resp, err := newTestAssistant(store, chat).Ask(context.Background(), &model.AskRequest{
		Question: "上海公寓5000以下",
	})
	require.NoError(t, err)

	assert.Equal(t, "推荐朝南公寓", resp.Answer)
	assert.Equal(t, StrategyPrimary, resp.Strategy)
	assert.Contains(t, resp.LocalData, "| 1 | 朝南公寓 | 上海 |")
	assert.NotEmpty(t, resp.SearchID)
	require.Len(t, resp.Listings, 1)

	require.Len(t, chat.messages, 3)
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "上海公寓5000以下"}, chat.messages[2])
}

func TestAssistantService_AskChatDisabled(t *testing.T) {
	store := &stubStore{}
	_, err := newTestAssistant(store, &fakeChat{enabled: false}).Ask(context.Background(), &model.AskRequest{Query: "公寓"})
	assert.ErrorIs(t, err, ErrChatUnavailable)
	assert.Empty(t, store.calls, "no retrieval without a chat provider")
}

func TestAssistantService_AskChatFailure(t *testing.T) {
	upstream := errors.New("502 bad gateway")
	_, err := newTestAssistant(&stubStore{}, &fakeChat{enabled: true, err: upstream}).
		Ask(context.Background(), &model.AskRequest{Query: "公寓"})

	assert.ErrorIs(t, err, ErrChat)
	assert.ErrorIs(t, err, upstream)
}

func TestAssistantService_AskRetrievalFailure(t *testing.T) {
	_, err := newTestAssistant(&stubStore{err: errors.New("db down")}, &fakeChat{enabled: true}).
		Ask(context.Background(), &model.AskRequest{Query: "公寓"})

	assert.ErrorIs(t, err, ErrRetrieval)
	assert.NotErrorIs(t, err, ErrChat)
}

func TestAssistantService_AskStream(t *testing.T) {
	store := &stubStore{byKeyword: map[string][]model.Listing{
		"公寓": {{ID: 1, Title: "朝南公寓"}},
	}}
	chat := &fakeChat{enabled: true, chunks: []StreamChunk{
		{ThinkingContent: "checking listings"},
		{Content: "Try "},
		{Content: "朝南公寓", Done: true},
	}}

	var events []string
	var deltas string
	resp, err := newTestAssistant(store, chat).AskStream(context.Background(), &model.AskRequest{Query: "公寓"},
		func(event string, data any) error {
			events = append(events, event)
			if event == "delta" {
				deltas += data.(map[string]any)["content"].(string)
			}
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "facets", "listings", "thinking", "delta", "delta", "answer"}, events)
	assert.Equal(t, "Try 朝南公寓", deltas)
	assert.Equal(t, "Try 朝南公寓", resp.Answer)
}

func TestAssistantService_AskStreamStopsOnCallbackError(t *testing.T) {
	gone := errors.New("client went away")
	store := &stubStore{}

	_, err := newTestAssistant(store, &fakeChat{enabled: true}).AskStream(context.Background(), &model.AskRequest{Query: "公寓"},
		func(string, any) error { return gone })

	assert.ErrorIs(t, err, gone)
	assert.Empty(t, store.calls)
}

func TestAssistantService_Search(t *testing.T) {
	store := &stubStore{}
	resp, err := newTestAssistant(store, nil).Search(context.Background(), &model.AskRequest{
		Query:    "杭州公寓",
		City:     "上海",
		MaxPrice: model.OptionalInt{Value: 3000, Valid: true},
		TopK:     model.OptionalInt{Value: 500, Valid: true},
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyRawQuery, resp.Strategy)
	assert.Equal(t, NoListingsText, resp.LocalData)
	assert.Equal(t, "上海", *resp.Effective.City)
	assert.Equal(t, "杭州", *resp.Facets.City)
	assert.Equal(t, int64(3000), *store.calls[0].MaxPrice)
	assert.Equal(t, 20, store.calls[0].Limit, "top_k is capped")
}

func TestAssistantService_ResolveLimit(t *testing.T) {
	s := newTestAssistant(&stubStore{}, nil)

	tests := []struct {
		topK model.OptionalInt
		want int
	}{
		{model.OptionalInt{}, 5},
		{model.OptionalInt{Value: 0, Valid: true}, 5},
		{model.OptionalInt{Value: -3, Valid: true}, 5},
		{model.OptionalInt{Value: 7, Valid: true}, 7},
		{model.OptionalInt{Value: 21, Valid: true}, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.resolveLimit(tt.topK))
	}
}

func TestAssistantService_GetListing(t *testing.T) {
	s := newTestAssistant(&stubStore{}, nil)

	listing, err := s.GetListing(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, listing)
}
