package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/jinford/drive-rag/internal/core/ingestion/chunker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder はテスト用のEmbedderスタブ
type stubEmbedder struct {
	embedFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls     int
}

func (s *stubEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.embedFunc != nil {
		return s.embedFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i), 0.5}
	}
	return vectors, nil
}

// stubVectorStore はテスト用のVectorStoreスタブ
// Upsertされたレコードを呼び出し単位で記録する
type stubVectorStore struct {
	upsertErr error
	batches   [][]*IndexRecord
}

func (s *stubVectorStore) Upsert(ctx context.Context, records []*IndexRecord) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.batches = append(s.batches, records)
	return nil
}

func (s *stubVectorStore) allRecords() []*IndexRecord {
	var all []*IndexRecord
	for _, batch := range s.batches {
		all = append(all, batch...)
	}
	return all
}

func TestIndexerIndex(t *testing.T) {
	embedder := &stubEmbedder{}
	store := &stubVectorStore{}
	indexer := NewIndexer(embedder, store)

	chunks := []chunker.Chunk{
		{Text: "最初のチャンク", Index: 0},
		{Text: "2番目のチャンク", Index: 1},
		{Text: "3番目のチャンク", Index: 2},
	}

	count, err := indexer.Index(context.Background(), chunks, "設計資料.txt", "file-123")

	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// 全レコードが1回のUpsertで保存される
	require.Len(t, store.batches, 1)
	records := store.batches[0]
	require.Len(t, records, 3)

	for i, record := range records {
		assert.Equal(t, chunks[i].Text, record.Contents)
		assert.Equal(t, SourceGoogleDrive, record.Metadata.Source)
		assert.Equal(t, "設計資料.txt", record.Metadata.FileName)
		assert.Equal(t, "file-123", record.Metadata.FileID)
		assert.Equal(t, i, record.Metadata.ChunkIndex)
		assert.False(t, record.Metadata.CreatedAt.IsZero())
		assert.NotEmpty(t, record.Embedding)
	}
}

func TestIndexerIndexIDsAreTimeOrdered(t *testing.T) {
	embedder := &stubEmbedder{}
	store := &stubVectorStore{}
	indexer := NewIndexer(embedder, store)

	chunks := make([]chunker.Chunk, 10)
	for i := range chunks {
		chunks[i] = chunker.Chunk{Text: "chunk", Index: i}
	}

	_, err := indexer.Index(context.Background(), chunks, "file.txt", "id-1")
	require.NoError(t, err)

	records := store.allRecords()
	require.Len(t, records, 10)
	for i := 1; i < len(records); i++ {
		assert.Less(t, records[i-1].ID.String(), records[i].ID.String())
	}
}

func TestIndexerIndexEmbeddingFailureWritesNothing(t *testing.T) {
	embedder := &stubEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("rate limited")
		},
	}
	store := &stubVectorStore{}
	indexer := NewIndexer(embedder, store)

	chunks := []chunker.Chunk{{Text: "text", Index: 0}}
	count, err := indexer.Index(context.Background(), chunks, "file.txt", "id-1")

	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Equal(t, 0, count)
	assert.Empty(t, store.batches)
}

func TestIndexerIndexVectorCountMismatch(t *testing.T) {
	embedder := &stubEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{0.1}}, nil
		},
	}
	store := &stubVectorStore{}
	indexer := NewIndexer(embedder, store)

	chunks := []chunker.Chunk{
		{Text: "a", Index: 0},
		{Text: "b", Index: 1},
	}
	count, err := indexer.Index(context.Background(), chunks, "file.txt", "id-1")

	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Equal(t, 0, count)
	assert.Empty(t, store.batches)
}

func TestIndexerIndexStoreFailure(t *testing.T) {
	embedder := &stubEmbedder{}
	store := &stubVectorStore{upsertErr: errors.New("connection refused")}
	indexer := NewIndexer(embedder, store)

	chunks := []chunker.Chunk{{Text: "text", Index: 0}}
	count, err := indexer.Index(context.Background(), chunks, "file.txt", "id-1")

	assert.ErrorIs(t, err, ErrStoreWriteFailed)
	assert.Equal(t, 0, count)
}

func TestIndexerIndexEmptyChunks(t *testing.T) {
	embedder := &stubEmbedder{}
	store := &stubVectorStore{}
	indexer := NewIndexer(embedder, store)

	count, err := indexer.Index(context.Background(), nil, "file.txt", "id-1")

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, embedder.calls)
	assert.Empty(t, store.batches)
}
