package ingestion

import (
	"context"

	"github.com/samber/mo"
)

// FileRef はドライブ上のファイルへの参照を表す
type FileRef struct {
	ID       string // ファイルID
	Name     string // ファイル名
	MIMEType string // MIMEタイプ
}

// FileContent はダウンロードしたファイルの内容を表す
// Googleネイティブ形式はエクスポート後のMIMEタイプとバイト列を保持する
type FileContent struct {
	Name     string
	MIMEType string
	Data     []byte
}

// FileProvider はファイルの検索とダウンロードを提供するインターフェース
// テスト時のスタブ用に消費者側で定義
type FileProvider interface {
	// SearchFile は名前でファイルを検索し、最初に見つかったファイルを返す
	// 見つからない場合は None を返す（エラーにはしない）
	SearchFile(ctx context.Context, name string) (mo.Option[FileRef], error)

	// DownloadFile はファイルの内容を取得する
	// Googleドキュメントはテキスト、スプレッドシートはCSVとしてエクスポートされる
	DownloadFile(ctx context.Context, fileID string) (*FileContent, error)
}

// TextExtractor はファイル内容からプレーンテキストを抽出するインターフェース
type TextExtractor interface {
	// Extract はMIMEタイプに応じてテキストを抽出する
	// 未対応の形式は空文字列を返す（エラーにはしない）
	Extract(content *FileContent) (string, error)
}

// Embedder はテキストのEmbeddingベクトル生成を提供するインターフェース
type Embedder interface {
	// BatchEmbed は複数テキストのEmbeddingを入力と同じ順序で返す
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore はインデックスレコードの永続化を提供するインターフェース
type VectorStore interface {
	// Upsert はレコード群を1回の呼び出しでまとめて保存する
	Upsert(ctx context.Context, records []*IndexRecord) error
}
