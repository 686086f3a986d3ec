package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrEmptyQuery はクエリが空の場合のエラー
var ErrEmptyQuery = errors.New("query must not be empty")

// Embedder はテキストのEmbedding生成インターフェース
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchService は類似文書検索のビジネスロジックを提供する
type SearchService struct {
	repo     Repository
	embedder Embedder
	logger   *slog.Logger
}

type searchServiceOptions struct {
	logger *slog.Logger
}

// SearchServiceOption は SearchService のオプション設定
type SearchServiceOption func(*searchServiceOptions)

// WithSearchLogger は SearchService にロガーを設定する
func WithSearchLogger(logger *slog.Logger) SearchServiceOption {
	return func(o *searchServiceOptions) {
		o.logger = logger
	}
}

// NewSearchService は新しいSearchServiceを作成する
func NewSearchService(repo Repository, embedder Embedder, opts ...SearchServiceOption) *SearchService {
	options := searchServiceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &SearchService{
		repo:     repo,
		embedder: embedder,
		logger:   options.logger,
	}
}

// Search はクエリに類似するレコードを類似度の降順で返す
// インデックスが空の場合は空のスライスを返す（エラーにはしない）
func (s *SearchService) Search(ctx context.Context, params SearchParams) ([]*RetrievedRecord, error) {
	if params.Query == "" {
		return nil, ErrEmptyQuery
	}

	queryVector, err := s.embedder.Embed(ctx, params.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	results, err := s.repo.SearchRecords(ctx, queryVector, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	s.logger.Debug("検索を実行",
		"query", params.Query,
		"limit", limit,
		"hits", len(results),
	)

	return results, nil
}
