package search

import "context"

// Repository はベクトル検索のデータアクセスインターフェース
// テスト時のスタブ用に消費者側で定義
type Repository interface {
	// SearchRecords はクエリベクトルに類似するレコードを類似度の降順で返す
	SearchRecords(ctx context.Context, queryVector []float32, limit int) ([]*RetrievedRecord, error)
}
