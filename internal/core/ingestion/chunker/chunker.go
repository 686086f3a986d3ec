package chunker

import "errors"

const (
	// DefaultChunkSize はデフォルトの1チャンクあたりの文字数
	DefaultChunkSize = 1000

	// DefaultOverlap は隣接チャンク間で共有するデフォルトの文字数
	DefaultOverlap = 100
)

var (
	// ErrInvalidChunkSize はチャンクサイズが正の値でない場合のエラー
	ErrInvalidChunkSize = errors.New("chunk size must be greater than zero")

	// ErrInvalidOverlap はオーバーラップがチャンクサイズ以上または負の場合のエラー
	// オーバーラップがチャンクサイズ以上だとカーソルが前進しなくなる
	ErrInvalidOverlap = errors.New("overlap must be in range [0, chunk size)")
)

// Chunk は元テキストの連続した部分文字列を表す
// Index は文書内での出現順（0始まり）
type Chunk struct {
	Text  string
	Index int
}

// Chunker はテキストを固定サイズのオーバーラップ付きウィンドウに分割します
// 分割は文字（rune）単位で行うため、マルチバイト文字が途中で壊れることはない
type Chunker struct {
	chunkSize int
	overlap   int
}

// New は新しいChunkerを作成します
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidOverlap
	}

	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// NewDefault はデフォルトパラメータ（1000文字 / 100文字オーバーラップ）のChunkerを作成します
func NewDefault() *Chunker {
	return &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
}

// ChunkSize は設定されたチャンクサイズを返します
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap は設定されたオーバーラップ文字数を返します
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split はテキストをチャンク列に分割します
//
// 先頭チャンクは text[0:chunkSize]。2番目以降のチャンクは、直前チャンクの
// 終端位置から overlap 文字だけ巻き戻した位置から始まる。これにより
// 先頭以外のすべてのチャンクは、直前チャンクの末尾と正確に overlap 文字を
// 共有する。各チャンクの先頭 overlap 文字を取り除いて連結すると元テキストが
// 完全に復元できる（欠落も重複もない）。
//
// テキスト全体が1チャンクに収まる場合はオーバーラップなしの単一チャンクを
// 返す。空文字列は空の単一チャンクになる。
func (c *Chunker) Split(text string) []Chunk {
	runes := []rune(text)

	if len(runes) <= c.chunkSize {
		return []Chunk{{Text: text, Index: 0}}
	}

	var chunks []Chunk
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		sliceStart := start
		if start > 0 {
			// 直前チャンクとの文脈を保つため overlap 文字分巻き戻す
			sliceStart = start - c.overlap
		}

		chunks = append(chunks, Chunk{
			Text:  string(runes[sliceStart:end]),
			Index: len(chunks),
		})

		// カーソルは巻き戻し前の終端位置から前進する
		start = end
	}

	return chunks
}
