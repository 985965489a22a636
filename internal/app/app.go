// Package app wires configuration, storage, cache and the chat client into
// the question answering pipeline shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"housing-assistant/internal/cache"
	"housing-assistant/internal/config"
	"housing-assistant/internal/repository"
	"housing-assistant/internal/service"
)

// App holds the long-lived dependencies of the service
type App struct {
	Config    *config.Config
	Repo      *repository.ListingRepository
	Cache     cache.Client // nil when caching is disabled or Redis is unreachable
	Store     service.ListingStore
	Chat      *service.OpenAIClient
	Extractor *service.FacetExtractor
	Assistant *service.AssistantService
}

// New builds the pipeline from cfg. The caller owns the returned App and
// must Close it.
func New(cfg *config.Config) (*App, error) {
	vocab, err := config.LoadVocabulary(cfg.Vocabulary.File)
	if err != nil {
		return nil, fmt.Errorf("error loading vocabulary: %w", err)
	}

	repo, err := repository.NewListingRepository(
		cfg.Database.Driver,
		cfg.GetDatabaseDSN(),
		cfg.Database.MaxConnections,
		cfg.Database.MaxIdleConnections,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("connected to listing store", "driver", repo.Driver())

	a := &App{Config: cfg, Repo: repo, Store: repo}

	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			PoolSize: cfg.Cache.PoolSize,
			Prefix:   cfg.Cache.Prefix,
		})
		if err != nil {
			slog.Warn("search cache disabled: redis unreachable", "addr", cfg.Cache.Addr, "error", err)
		} else {
			ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
			a.Cache = redisClient
			a.Store = repository.NewCachedRepository(repo, redisClient, ttl)
			slog.Info("search cache enabled", "addr", cfg.Cache.Addr, "ttl", ttl)
		}
	}

	a.Chat = service.NewOpenAIClient(cfg.LLM)
	if a.Chat.IsEnabled() {
		slog.Info("chat client initialized",
			"api_base", cfg.LLM.APIBase,
			"model", cfg.LLM.ChatModel,
			"temperature", cfg.LLM.ChatTemperature,
			"max_tokens", cfg.LLM.ChatMaxTokens)
	} else {
		slog.Warn("chat is disabled: set OPENAI_API_KEY or DEEPSEEK_API_KEY to enable answers")
	}

	a.Extractor = service.NewFacetExtractor(vocab)
	retriever := service.NewRetriever(a.Extractor, a.Store, cfg.Search.DefaultLimit)
	composer := service.NewComposer(cfg.LLM.NoMatchReply)
	a.Assistant = service.NewAssistantService(
		retriever,
		a.Store,
		composer,
		a.Chat,
		cfg.Search.DefaultLimit,
		cfg.Search.MaxLimit,
	)

	return a, nil
}

// InvalidateSearchCache drops every cached search result. It is a no-op
// without a cache.
func (a *App) InvalidateSearchCache(ctx context.Context) error {
	if a.Cache == nil {
		return nil
	}
	if err := a.Cache.DeleteByPrefix(ctx, repository.SearchCachePrefix); err != nil {
		return fmt.Errorf("failed to invalidate search cache: %w", err)
	}
	return nil
}

// Close releases the database and cache connections
func (a *App) Close() error {
	var firstErr error
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if err := a.Repo.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
