package ask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jinford/drive-rag/internal/core/search"
)

var (
	// ErrEmptyQuery は質問文が空の場合のエラー
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrRetrievalFailed は検索ステップに失敗した場合のエラー
	ErrRetrievalFailed = errors.New("failed to retrieve context")

	// ErrInvalidResponse はLLMの出力が期待するJSON構造でなかった場合のエラー
	ErrInvalidResponse = errors.New("llm returned malformed response")
)

// LLMClient はLLM通信インターフェース
type LLMClient interface {
	// GenerateCompletion はプロンプトに対する補完をJSON文字列で返す
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}

// AskService は質問応答のビジネスロジックを提供する
type AskService struct {
	searchService *search.SearchService
	llm           LLMClient
	promptBuilder *PromptBuilder
	logger        *slog.Logger
}

// AskServiceOption は AskService のオプション設定
type AskServiceOption func(*AskService)

// WithAskLogger は AskService にロガーを設定する
func WithAskLogger(logger *slog.Logger) AskServiceOption {
	return func(s *AskService) {
		s.logger = logger
	}
}

// WithAskPromptBuilder はプロンプトビルダーを上書きする
func WithAskPromptBuilder(builder *PromptBuilder) AskServiceOption {
	return func(s *AskService) {
		s.promptBuilder = builder
	}
}

// NewAskService は新しいAskServiceを作成する
func NewAskService(
	searchService *search.SearchService,
	llm LLMClient,
	opts ...AskServiceOption,
) *AskService {
	svc := &AskService{
		searchService: searchService,
		llm:           llm,
		promptBuilder: NewPromptBuilder(nil, 0),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.promptBuilder == nil {
		svc.promptBuilder = NewPromptBuilder(nil, 0)
	}

	return svc
}

// Ask は質問に対してRAGベースで構造化された回答を生成する
//
// 検索結果が空の場合でもLLMによる合成は実行される（インデックスが空でも
// クラッシュせず、コンテキスト不足の回答が返る）。
func (s *AskService) Ask(ctx context.Context, params AskParams) (*AskResult, error) {
	if params.Query == "" {
		return nil, ErrEmptyQuery
	}

	records, err := s.searchService.Search(ctx, search.SearchParams{
		Query: params.Query,
		Limit: params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	s.logger.Info("関連文書を検索",
		"query", params.Query,
		"hits", len(records),
	)

	prompt := s.promptBuilder.Build(params.Query, records)

	raw, err := s.llm.GenerateCompletion(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	response, err := parseSynthesizedResponse(raw)
	if err != nil {
		return nil, err
	}

	sources := make([]SourceReference, 0, len(records))
	for _, record := range records {
		sources = append(sources, SourceReference{
			FileName:   record.FileName,
			FileID:     record.FileID,
			ChunkIndex: record.ChunkIndex,
			Score:      record.Score,
		})
	}

	s.logger.Info("回答を生成",
		"answerLength", len(response.Answer),
		"enoughContext", response.EnoughContext,
		"sources", len(sources),
	)

	return &AskResult{
		Response: response,
		Sources:  sources,
	}, nil
}

// parseSynthesizedResponse はLLM出力をパースする
// JSONモードを使っていてもコードフェンス付きで返るケースがあるため取り除く
func parseSynthesizedResponse(raw string) (*SynthesizedResponse, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var response SynthesizedResponse
	if err := json.Unmarshal([]byte(cleaned), &response); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return &response, nil
}
