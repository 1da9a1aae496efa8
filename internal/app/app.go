// Package app wires the configured components together for the CLI commands.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/config"
	"github.com/ppetroskevicius/fastctl-search/internal/domain"
	"github.com/ppetroskevicius/fastctl-search/internal/metrics"
	"github.com/ppetroskevicius/fastctl-search/internal/repository/catalog"
	"github.com/ppetroskevicius/fastctl-search/internal/repository/embcache"
	"github.com/ppetroskevicius/fastctl-search/internal/transport/openai"
	"github.com/ppetroskevicius/fastctl-search/internal/usecase/interpret"
	"github.com/ppetroskevicius/fastctl-search/internal/usecase/search"
)

// App holds the assembled components of one process.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Catalog  *catalog.Repo
	Embedder domain.Embedder
	Search   *search.Service

	// Raw provider without the cache decorator, for health checks.
	Provider *openai.Embedder

	redisStore *embcache.RedisStore
}

// New builds the full dependency graph from configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	client, err := catalog.NewClient(cfg.Qdrant.URL, cfg.Qdrant.APIKey)
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}
	repo := catalog.New(client, cfg.Qdrant.Collection, logger)

	provider := openai.NewEmbedder(&openai.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.EmbeddingDimensions,
		Logger:     logger,
	})

	var embedder domain.Embedder = provider
	var redisStore *embcache.RedisStore
	if cfg.Cache.RedisAddr != "" {
		redisStore, err = embcache.NewRedisStore(
			cfg.Cache.RedisAddr,
			cfg.Cache.RedisPassword,
			time.Duration(cfg.Cache.TTLHours)*time.Hour,
		)
		if err != nil {
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		embedder = embcache.New(
			provider, redisStore, cfg.OpenAI.EmbeddingModel,
			metrics.EmbeddingCacheTotal, logger,
		)
		logger.Info("embedding cache enabled", zap.String("addr", cfg.Cache.RedisAddr))
	}

	extractor := openai.NewExtractor(&openai.ExtractorConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ExtractionModel,
		Logger:  logger,
	})

	interpreter := interpret.New(extractor, logger)
	searchSvc := search.New(interpreter, repo, embedder, logger)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Catalog:    repo,
		Embedder:   embedder,
		Search:     searchSvc,
		Provider:   provider,
		redisStore: redisStore,
	}, nil
}

// Close releases outbound connections.
func (a *App) Close() {
	if a.redisStore != nil {
		a.redisStore.Close()
	}
	if err := a.Catalog.Close(); err != nil {
		a.Logger.Warn("failed to close catalog", zap.Error(err))
	}
}
