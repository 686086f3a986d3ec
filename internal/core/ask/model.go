package ask

// AskParams は質問応答のパラメータを表す
type AskParams struct {
	Query string // ユーザーの質問文
	Limit int    // 検索するレコード数の上限（0以下の場合はデフォルト値）
}

// SynthesizedResponse はLLMが生成する構造化された回答を表す
// LLMにはこの構造のJSONを出力させる
type SynthesizedResponse struct {
	// Answer は質問への回答本文
	Answer string `json:"answer"`

	// ThoughtProcess は回答に至るまでの思考過程
	ThoughtProcess []string `json:"thought_process"`

	// EnoughContext は検索結果だけで回答に十分だったかどうか
	EnoughContext bool `json:"enough_context"`
}

// AskResult は質問応答の結果を表す
type AskResult struct {
	Response *SynthesizedResponse // LLMによる構造化回答
	Sources  []SourceReference    // 参照したソース情報
}

// SourceReference は回答の根拠となったソース参照を表す
type SourceReference struct {
	FileName   string  // ファイル名
	FileID     string  // Google DriveのファイルID
	ChunkIndex int     // ファイル内でのチャンク位置
	Score      float64 // 関連度スコア
}
