package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/drive-rag/internal/core/ingestion/chunker"
)

// Indexer はチャンク列をEmbedding付きレコードとしてベクトルストアに保存する
type Indexer struct {
	embedder Embedder
	store    VectorStore
	logger   *slog.Logger
}

type indexerOptions struct {
	logger *slog.Logger
}

// IndexerOption は Indexer のオプション設定
type IndexerOption func(*indexerOptions)

// WithIndexerLogger は Indexer にロガーを設定する
func WithIndexerLogger(logger *slog.Logger) IndexerOption {
	return func(o *indexerOptions) {
		o.logger = logger
	}
}

// NewIndexer は新しいIndexerを作成する
func NewIndexer(embedder Embedder, store VectorStore, opts ...IndexerOption) *Indexer {
	options := indexerOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Indexer{
		embedder: embedder,
		store:    store,
		logger:   options.logger,
	}
}

// Index はチャンク列をインデックス化し、保存したレコード数を返す
//
// 全チャンクのEmbeddingを先にまとめて生成してから、1回のUpsertで保存する。
// Embedding生成に失敗した場合はストアへの書き込みを一切行わない。
// 同じファイルを再度取り込んだ場合、既存レコードは残したまま新しいIDで
// 追記する（重複排除は行わない）。
func (ix *Indexer) Index(ctx context.Context, chunks []chunker.Chunk, fileName, fileID string) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}

	vectors, err := ix.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: expected %d vectors, got %d", ErrEmbeddingFailed, len(chunks), len(vectors))
	}

	now := time.Now().UTC()
	records := make([]*IndexRecord, 0, len(chunks))
	for i, chunk := range chunks {
		id, err := uuid.NewV7()
		if err != nil {
			return 0, fmt.Errorf("failed to generate record id: %w", err)
		}

		records = append(records, &IndexRecord{
			ID:        id,
			Contents:  chunk.Text,
			Embedding: vectors[i],
			Metadata: RecordMetadata{
				Source:     SourceGoogleDrive,
				FileName:   fileName,
				FileID:     fileID,
				ChunkIndex: chunk.Index,
				CreatedAt:  now,
			},
		})
	}

	if err := ix.store.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}

	ix.logger.Debug("チャンクを保存",
		"fileName", fileName,
		"fileID", fileID,
		"count", len(records),
	)

	return len(records), nil
}
