package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/drive-rag/internal/core/ingestion"
	"github.com/jinford/drive-rag/internal/core/search"
)

const (
	// tableName はインデックスレコードを格納するテーブル名
	tableName = "document_chunks"

	// DefaultDimension はテーブル作成時のデフォルトのベクトル次元数
	DefaultDimension = 1536

	// DefaultStoreTimeout はレコード操作1回あたりのデフォルトタイムアウト
	DefaultStoreTimeout = 30 * time.Second
)

// Store は pgvector 拡張を使用したベクトルストア実装
// ingestion.VectorStore と search.Repository の両方を実装する
type Store struct {
	pool      *pgxpool.Pool
	dimension int
	timeout   time.Duration
}

type storeOptions struct {
	dimension int
	timeout   time.Duration
}

// StoreOption は Store のオプション設定
type StoreOption func(*storeOptions)

// WithDimension はテーブル作成時のベクトル次元数を上書きする
func WithDimension(dimension int) StoreOption {
	return func(o *storeOptions) {
		o.dimension = dimension
	}
}

// WithStoreTimeout はレコード操作のタイムアウトを上書きする
func WithStoreTimeout(timeout time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.timeout = timeout
	}
}

// NewStore は新しい Store を作成する
func NewStore(pool *pgxpool.Pool, opts ...StoreOption) *Store {
	options := storeOptions{
		dimension: DefaultDimension,
		timeout:   DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.dimension <= 0 {
		options.dimension = DefaultDimension
	}
	if options.timeout <= 0 {
		options.timeout = DefaultStoreTimeout
	}

	return &Store{
		pool:      pool,
		dimension: options.dimension,
		timeout:   options.timeout,
	}
}

// CreateTables は vector 拡張とレコードテーブルを作成する
// 既に存在する場合は何もしない
func (s *Store) CreateTables(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			contents TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			source TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`, tableName, s.dimension)

	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// CreateVectorIndex はコサイン距離用のHNSWインデックスを作成する
// 既に存在する場合は何もしない
func (s *Store) CreateVectorIndex(ctx context.Context) error {
	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s USING hnsw (embedding vector_cosine_ops)`, tableName, tableName)

	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	return nil
}

// Upsert はレコード群を1トランザクション内でまとめて保存する
// 同一IDのレコードは内容を上書きする
func (s *Store) Upsert(ctx context.Context, records []*ingestion.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	upsert := fmt.Sprintf(`
		INSERT INTO %s (id, contents, embedding, source, file_name, file_id, chunk_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			contents = EXCLUDED.contents,
			embedding = EXCLUDED.embedding,
			source = EXCLUDED.source,
			file_name = EXCLUDED.file_name,
			file_id = EXCLUDED.file_id,
			chunk_index = EXCLUDED.chunk_index,
			created_at = EXCLUDED.created_at`, tableName)

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(upsert,
			UUIDToPgtype(record.ID),
			record.Contents,
			pgvector.NewVector(record.Embedding),
			record.Metadata.Source,
			record.Metadata.FileName,
			record.Metadata.FileID,
			record.Metadata.ChunkIndex,
			TimeToPgtype(record.Metadata.CreatedAt),
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to upsert record: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SearchRecords はクエリベクトルにコサイン類似度が高い順にレコードを返す
func (s *Store) SearchRecords(ctx context.Context, queryVector []float32, limit int) ([]*search.RetrievedRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT
			id,
			contents,
			file_name,
			file_id,
			chunk_index,
			created_at,
			1 - (embedding <=> $1::vector) AS score
		FROM %s
		ORDER BY embedding <=> $1::vector
		LIMIT $2`, tableName)

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	defer rows.Close()

	results := make([]*search.RetrievedRecord, 0, limit)
	for rows.Next() {
		var (
			id        pgtype.UUID
			record    search.RetrievedRecord
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&id,
			&record.Contents,
			&record.FileName,
			&record.FileID,
			&record.ChunkIndex,
			&createdAt,
			&record.Score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		record.ID = PgtypeToUUID(id)
		record.CreatedAt = PgtypeToTime(createdAt)
		results = append(results, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return results, nil
}

// CountRecords はテーブル内の総レコード数を返す
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tableName)
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// インターフェース実装の確認
var (
	_ ingestion.VectorStore = (*Store)(nil)
	_ search.Repository     = (*Store)(nil)
)
