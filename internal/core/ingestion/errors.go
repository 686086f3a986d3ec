package ingestion

import "errors"

var (
	// ErrEmptyFileName はファイル名が空の場合のエラー
	ErrEmptyFileName = errors.New("file name must not be empty")

	// ErrEmbeddingFailed はEmbedding生成に失敗した場合のエラー
	// このエラーが返る場合、ストアへの書き込みは一切行われていない
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrStoreWriteFailed はベクトルストアへの保存に失敗した場合のエラー
	ErrStoreWriteFailed = errors.New("failed to write records to vector store")
)
