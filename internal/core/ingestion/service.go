package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinford/drive-rag/internal/core/ingestion/chunker"
)

// IngestService はGoogle Driveからのファイル取り込みユースケースを提供する
type IngestService struct {
	provider  FileProvider
	extractor TextExtractor
	chunker   *chunker.Chunker
	indexer   *Indexer
	logger    *slog.Logger
}

type ingestServiceOptions struct {
	chunker *chunker.Chunker
	logger  *slog.Logger
}

// IngestServiceOption は IngestService のオプション設定
type IngestServiceOption func(*ingestServiceOptions)

// WithIngestLogger は IngestService にロガーを設定する
func WithIngestLogger(logger *slog.Logger) IngestServiceOption {
	return func(o *ingestServiceOptions) {
		o.logger = logger
	}
}

// WithIngestChunker はチャンク分割パラメータを上書きする
func WithIngestChunker(c *chunker.Chunker) IngestServiceOption {
	return func(o *ingestServiceOptions) {
		o.chunker = c
	}
}

// NewIngestService は新しいIngestServiceを作成する
func NewIngestService(
	provider FileProvider,
	extractor TextExtractor,
	indexer *Indexer,
	opts ...IngestServiceOption,
) *IngestService {
	options := ingestServiceOptions{
		chunker: chunker.NewDefault(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.chunker == nil {
		options.chunker = chunker.NewDefault()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &IngestService{
		provider:  provider,
		extractor: extractor,
		chunker:   options.chunker,
		indexer:   indexer,
		logger:    options.logger,
	}
}

// ProcessFile は名前でファイルを検索し、抽出・分割・インデックス化まで行う
//
// ファイルが見つからない場合とテキストを抽出できなかった場合は、
// エラーではなく Indexed=false の結果を返す（呼び出し側はメッセージ表示のみ）。
// Embedding生成またはストア保存の失敗はエラーとして返し、部分的な
// 書き込みは発生しない。
func (s *IngestService) ProcessFile(ctx context.Context, fileName string) (*ProcessResult, error) {
	startTime := time.Now()

	if fileName == "" {
		return nil, ErrEmptyFileName
	}

	s.logger.Info("ファイル取り込みを開始", "fileName", fileName)

	fileOpt, err := s.provider.SearchFile(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to search file: %w", err)
	}
	if fileOpt.IsAbsent() {
		s.logger.Info("ファイルが見つかりませんでした", "fileName", fileName)
		return &ProcessResult{
			Indexed:  false,
			FileName: fileName,
			Duration: time.Since(startTime),
		}, nil
	}

	file := fileOpt.MustGet()

	content, err := s.provider.DownloadFile(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	text, err := s.extractor.Extract(content)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	if text == "" {
		s.logger.Warn("テキストを抽出できませんでした",
			"fileName", file.Name,
			"mimeType", content.MIMEType,
		)
		return &ProcessResult{
			Indexed:  false,
			FileName: file.Name,
			FileID:   file.ID,
			Duration: time.Since(startTime),
		}, nil
	}

	chunks := s.chunker.Split(text)

	count, err := s.indexer.Index(ctx, chunks, file.Name, file.ID)
	if err != nil {
		return nil, err
	}

	duration := time.Since(startTime)

	s.logger.Info("ファイル取り込みが完了",
		"fileName", file.Name,
		"fileID", file.ID,
		"chunks", count,
		"duration", duration,
	)

	return &ProcessResult{
		Indexed:    count > 0,
		FileName:   file.Name,
		FileID:     file.ID,
		ChunkCount: count,
		Duration:   duration,
	}, nil
}
