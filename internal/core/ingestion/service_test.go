package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jinford/drive-rag/internal/core/ingestion/chunker"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFileProvider はテスト用のFileProviderスタブ
type stubFileProvider struct {
	searchFunc   func(ctx context.Context, name string) (mo.Option[FileRef], error)
	downloadFunc func(ctx context.Context, fileID string) (*FileContent, error)
}

func (s *stubFileProvider) SearchFile(ctx context.Context, name string) (mo.Option[FileRef], error) {
	if s.searchFunc != nil {
		return s.searchFunc(ctx, name)
	}
	return mo.None[FileRef](), nil
}

func (s *stubFileProvider) DownloadFile(ctx context.Context, fileID string) (*FileContent, error) {
	if s.downloadFunc != nil {
		return s.downloadFunc(ctx, fileID)
	}
	return nil, errors.New("not implemented")
}

// stubExtractor はテスト用のTextExtractorスタブ
type stubExtractor struct {
	extractFunc func(content *FileContent) (string, error)
}

func (s *stubExtractor) Extract(content *FileContent) (string, error) {
	if s.extractFunc != nil {
		return s.extractFunc(content)
	}
	return string(content.Data), nil
}

func foundFile(ref FileRef, data string) *stubFileProvider {
	return &stubFileProvider{
		searchFunc: func(ctx context.Context, name string) (mo.Option[FileRef], error) {
			return mo.Some(ref), nil
		},
		downloadFunc: func(ctx context.Context, fileID string) (*FileContent, error) {
			return &FileContent{
				Name:     ref.Name,
				MIMEType: ref.MIMEType,
				Data:     []byte(data),
			}, nil
		},
	}
}

func newTestService(provider FileProvider, store *stubVectorStore, opts ...IngestServiceOption) *IngestService {
	indexer := NewIndexer(&stubEmbedder{}, store)
	return NewIngestService(provider, &stubExtractor{}, indexer, opts...)
}

func TestProcessFile(t *testing.T) {
	ref := FileRef{ID: "file-1", Name: "議事録.txt", MIMEType: "text/plain"}
	store := &stubVectorStore{}
	service := newTestService(foundFile(ref, "会議の内容です。"), store)

	result, err := service.ProcessFile(context.Background(), "議事録")

	require.NoError(t, err)
	assert.True(t, result.Indexed)
	assert.Equal(t, "議事録.txt", result.FileName)
	assert.Equal(t, "file-1", result.FileID)
	assert.Equal(t, 1, result.ChunkCount)

	records := store.allRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "会議の内容です。", records[0].Contents)
}

func TestProcessFileSplitsLongText(t *testing.T) {
	longText := strings.Repeat("a", 2500)
	ref := FileRef{ID: "file-2", Name: "report.txt", MIMEType: "text/plain"}
	store := &stubVectorStore{}
	c, err := chunker.New(1000, 100)
	require.NoError(t, err)
	service := newTestService(foundFile(ref, longText), store, WithIngestChunker(c))

	result, err := service.ProcessFile(context.Background(), "report")

	require.NoError(t, err)
	assert.Equal(t, 3, result.ChunkCount)
	assert.Len(t, store.allRecords(), 3)
}

func TestProcessFileNotFound(t *testing.T) {
	store := &stubVectorStore{}
	service := newTestService(&stubFileProvider{}, store)

	result, err := service.ProcessFile(context.Background(), "存在しないファイル")

	require.NoError(t, err)
	assert.False(t, result.Indexed)
	assert.Equal(t, 0, result.ChunkCount)
	assert.Empty(t, store.batches)
}

func TestProcessFileEmptyName(t *testing.T) {
	service := newTestService(&stubFileProvider{}, &stubVectorStore{})

	result, err := service.ProcessFile(context.Background(), "")

	assert.ErrorIs(t, err, ErrEmptyFileName)
	assert.Nil(t, result)
}

func TestProcessFileUnsupportedFormat(t *testing.T) {
	ref := FileRef{ID: "file-3", Name: "movie.mp4", MIMEType: "video/mp4"}
	provider := foundFile(ref, "binary data")
	store := &stubVectorStore{}
	indexer := NewIndexer(&stubEmbedder{}, store)
	extractor := &stubExtractor{
		extractFunc: func(content *FileContent) (string, error) {
			return "", nil
		},
	}
	service := NewIngestService(provider, extractor, indexer)

	result, err := service.ProcessFile(context.Background(), "movie")

	require.NoError(t, err)
	assert.False(t, result.Indexed)
	assert.Empty(t, store.batches)
}

func TestProcessFileSearchError(t *testing.T) {
	provider := &stubFileProvider{
		searchFunc: func(ctx context.Context, name string) (mo.Option[FileRef], error) {
			return mo.None[FileRef](), errors.New("drive api unavailable")
		},
	}
	service := newTestService(provider, &stubVectorStore{})

	result, err := service.ProcessFile(context.Background(), "file")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestProcessFileEmbeddingFailureWritesNothing(t *testing.T) {
	ref := FileRef{ID: "file-4", Name: "doc.txt", MIMEType: "text/plain"}
	store := &stubVectorStore{}
	embedder := &stubEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("rate limited")
		},
	}
	indexer := NewIndexer(embedder, store)
	service := NewIngestService(foundFile(ref, "some text"), &stubExtractor{}, indexer)

	result, err := service.ProcessFile(context.Background(), "doc")

	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Nil(t, result)
	assert.Empty(t, store.batches)
}

// 同じファイルを2回取り込むと既存レコードを残したまま追記される
func TestProcessFileReingestionAppendsRecords(t *testing.T) {
	ref := FileRef{ID: "file-5", Name: "notes.txt", MIMEType: "text/plain"}
	store := &stubVectorStore{}
	service := newTestService(foundFile(ref, "重要なメモ"), store)

	_, err := service.ProcessFile(context.Background(), "notes")
	require.NoError(t, err)
	_, err = service.ProcessFile(context.Background(), "notes")
	require.NoError(t, err)

	records := store.allRecords()
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.Equal(t, records[0].Contents, records[1].Contents)
}
