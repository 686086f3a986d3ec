package search

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder はテスト用のEmbedderスタブ
type stubEmbedder struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedFunc != nil {
		return s.embedFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// stubRepository はテスト用のRepositoryスタブ
type stubRepository struct {
	searchFunc func(ctx context.Context, queryVector []float32, limit int) ([]*RetrievedRecord, error)
	gotLimit   int
}

func (s *stubRepository) SearchRecords(ctx context.Context, queryVector []float32, limit int) ([]*RetrievedRecord, error) {
	s.gotLimit = limit
	if s.searchFunc != nil {
		return s.searchFunc(ctx, queryVector, limit)
	}
	return []*RetrievedRecord{}, nil
}

func TestSearch(t *testing.T) {
	records := []*RetrievedRecord{
		{ID: uuid.New(), Contents: "最も類似する文書", FileName: "a.txt", Score: 0.92},
		{ID: uuid.New(), Contents: "次に類似する文書", FileName: "b.txt", Score: 0.85},
	}
	repo := &stubRepository{
		searchFunc: func(ctx context.Context, queryVector []float32, limit int) ([]*RetrievedRecord, error) {
			return records, nil
		},
	}
	service := NewSearchService(repo, &stubEmbedder{})

	results, err := service.Search(context.Background(), SearchParams{Query: "類似検索", Limit: 5})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "最も類似する文書", results[0].Contents)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestSearchEmptyQuery(t *testing.T) {
	service := NewSearchService(&stubRepository{}, &stubEmbedder{})

	results, err := service.Search(context.Background(), SearchParams{Query: ""})

	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Nil(t, results)
}

func TestSearchDefaultLimit(t *testing.T) {
	repo := &stubRepository{}
	service := NewSearchService(repo, &stubEmbedder{})

	_, err := service.Search(context.Background(), SearchParams{Query: "query"})

	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, repo.gotLimit)
}

func TestSearchEmptyIndexReturnsEmptySlice(t *testing.T) {
	service := NewSearchService(&stubRepository{}, &stubEmbedder{})

	results, err := service.Search(context.Background(), SearchParams{Query: "何もない"})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmbedderFailure(t *testing.T) {
	embedder := &stubEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("api unavailable")
		},
	}
	service := NewSearchService(&stubRepository{}, embedder)

	results, err := service.Search(context.Background(), SearchParams{Query: "query"})

	assert.Error(t, err)
	assert.Nil(t, results)
}
