package search

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLimit はデフォルトの検索結果件数
const DefaultLimit = 5

// RetrievedRecord はベクトル検索で取得した1レコードを表す
// Score はコサイン類似度（1に近いほど類似）
type RetrievedRecord struct {
	ID         uuid.UUID `json:"id"`
	Contents   string    `json:"contents"`
	FileName   string    `json:"file_name"`
	FileID     string    `json:"file_id"`
	ChunkIndex int       `json:"chunk_index"`
	CreatedAt  time.Time `json:"created_at"`
	Score      float64   `json:"score"`
}

// SearchParams は検索パラメータを表す
type SearchParams struct {
	Query string
	Limit int // 0以下の場合は DefaultLimit を使用
}
