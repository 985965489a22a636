package service

import "errors"

var (
	// ErrRetrieval wraps listing repository failures
	ErrRetrieval = errors.New("retrieval failed")
	// ErrChat wraps chat completion failures
	ErrChat = errors.New("chat completion failed")
	// ErrChatUnavailable is returned when no chat provider is configured
	ErrChatUnavailable = errors.New("chat completion is not configured")
)
