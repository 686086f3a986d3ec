package ingestion

import (
	"time"

	"github.com/google/uuid"
)

// SourceGoogleDrive はGoogle Drive由来のレコードに付与するソース種別
const SourceGoogleDrive = "google_drive"

// RecordMetadata はインデックスレコードに付随するメタデータ
// 検索結果の出典表示に使うため、取り込み時点の情報をそのまま保持する
type RecordMetadata struct {
	Source     string    `json:"source"`
	FileName   string    `json:"file_name"`
	FileID     string    `json:"file_id"`
	ChunkIndex int       `json:"chunk_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// IndexRecord はベクトルストアに保存する1レコードを表す
// IDは時刻順に単調増加するUUIDv7を使用する
type IndexRecord struct {
	ID        uuid.UUID
	Contents  string
	Embedding []float32
	Metadata  RecordMetadata
}

// ProcessResult はファイル取り込み処理の結果を表す
type ProcessResult struct {
	Indexed    bool          // レコードが1件以上保存されたかどうか
	FileName   string        // 実際に処理したファイル名
	FileID     string        // Google DriveのファイルID
	ChunkCount int           // 保存したチャンク数
	Duration   time.Duration // 処理時間
}
