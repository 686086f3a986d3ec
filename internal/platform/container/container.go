package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	driveapi "google.golang.org/api/drive/v3"

	coreask "github.com/jinford/drive-rag/internal/core/ask"
	"github.com/jinford/drive-rag/internal/core/extract"
	coreingestion "github.com/jinford/drive-rag/internal/core/ingestion"
	"github.com/jinford/drive-rag/internal/core/ingestion/chunker"
	coresearch "github.com/jinford/drive-rag/internal/core/search"
	"github.com/jinford/drive-rag/internal/infra/drive"
	"github.com/jinford/drive-rag/internal/infra/openai"
	"github.com/jinford/drive-rag/internal/infra/postgres"
	"github.com/jinford/drive-rag/internal/platform/config"
)

// ServiceContainer はアプリケーション全体の依存関係を保持する
type ServiceContainer struct {
	IngestService *coreingestion.IngestService
	SearchService *coresearch.SearchService
	AskService    *coreask.AskService

	logger *slog.Logger
	pool   *pgxpool.Pool
}

// Embedder は取り込みと検索の両方で使用するEmbedding生成インターフェース
type Embedder interface {
	coreingestion.Embedder
	coresearch.Embedder
}

type containerOptions struct {
	logger       *slog.Logger
	embedder     Embedder
	provider     coreingestion.FileProvider
	llmClient    coreask.LLMClient
	tokenCounter coreask.TokenCounter
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder Embedder) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerFileProvider は FileProvider を差し替える
func WithContainerFileProvider(provider coreingestion.FileProvider) ContainerOption {
	return func(opts *containerOptions) {
		opts.provider = provider
	}
}

// WithContainerLLMClient は LLM クライアントを差し替える
func WithContainerLLMClient(client coreask.LLMClient) ContainerOption {
	return func(opts *containerOptions) {
		opts.llmClient = client
	}
}

// WithContainerTokenCounter は TokenCounter を差し替える
func WithContainerTokenCounter(counter coreask.TokenCounter) ContainerOption {
	return func(opts *containerOptions) {
		opts.tokenCounter = counter
	}
}

// NewContainer は設定からコンテナを生成する
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	pool, err := postgres.Connect(ctx, postgres.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
	}

	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	// Embedder (OpenAI)
	embedder := options.embedder
	if embedder == nil {
		embedder = openai.NewEmbedder(
			cfg.OpenAI.APIKey,
			openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
		)
	}

	// VectorStore (PostgreSQL + pgvector)
	store := postgres.NewStore(pool, postgres.WithDimension(cfg.OpenAI.EmbeddingDimension))

	// FileProvider (Google Drive)
	provider := options.provider
	if provider == nil {
		var service *driveapi.Service
		service, err = drive.NewService(ctx, cfg.Drive.CredentialsPath, cfg.Drive.TokenPath)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("Google Driveクライアント初期化に失敗しました: %w", err)
		}
		provider = drive.NewProvider(service, drive.WithProviderLogger(options.logger))
	}

	// TextExtractor
	extractor := extract.New(extract.WithExtractorLogger(options.logger))

	// Chunker
	textChunker, err := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("Chunker 初期化に失敗しました: %w", err)
	}

	// IngestService
	indexer := coreingestion.NewIndexer(embedder, store, coreingestion.WithIndexerLogger(options.logger))
	ingestService := coreingestion.NewIngestService(
		provider,
		extractor,
		indexer,
		coreingestion.WithIngestChunker(textChunker),
		coreingestion.WithIngestLogger(options.logger),
	)

	// SearchService
	searchService := coresearch.NewSearchService(store, embedder, coresearch.WithSearchLogger(options.logger))

	// LLMClient (OpenAI)
	llmClient := options.llmClient
	if llmClient == nil {
		synthesizer, err := openai.NewSynthesizer(cfg.OpenAI.APIKey, openai.WithLLMModel(cfg.OpenAI.LLMModel))
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("OpenAI LLMクライアント初期化に失敗しました: %w", err)
		}
		llmClient = synthesizer
	}

	// TokenCounter (tiktoken)
	tokenCounter := options.tokenCounter
	if tokenCounter == nil {
		tc, err := openai.NewTokenCounter()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("TokenCounter 初期化に失敗しました: %w", err)
		}
		tokenCounter = tc
	}

	// AskService
	askService := coreask.NewAskService(
		searchService,
		llmClient,
		coreask.WithAskPromptBuilder(coreask.NewPromptBuilder(tokenCounter, 0)),
		coreask.WithAskLogger(options.logger),
	)

	return &ServiceContainer{
		IngestService: ingestService,
		SearchService: searchService,
		AskService:    askService,
		logger:        options.logger,
		pool:          pool,
	}, nil
}

// Close は内部リソースを解放する
func (c *ServiceContainer) Close() {
	if c != nil && c.pool != nil {
		c.pool.Close()
	}
}

// Logger はロガーを返す
func (c *ServiceContainer) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}
