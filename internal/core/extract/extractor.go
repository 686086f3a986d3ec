package extract

import (
	"log/slog"
	"strings"

	"github.com/jinford/drive-rag/internal/core/ingestion"
)

// MIMEタイプ定数
const (
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePDF  = "application/pdf"
)

var _ ingestion.TextExtractor = (*Extractor)(nil)

// Extractor はMIMEタイプに応じてファイル内容からプレーンテキストを抽出する
//
// テキスト系（text/plain、text/csv、text/markdown など）はそのまま文字列化、
// Word文書（.docx）はXMLから段落テキストを取り出し、PDFは埋め込みテキストを
// 抽出する。未対応の形式は空文字列を返す
type Extractor struct {
	logger *slog.Logger
}

type extractorOptions struct {
	logger *slog.Logger
}

// ExtractorOption は Extractor のオプション設定
type ExtractorOption func(*extractorOptions)

// WithExtractorLogger は Extractor にロガーを設定する
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(o *extractorOptions) {
		o.logger = logger
	}
}

// New は新しいExtractorを作成する
func New(opts ...ExtractorOption) *Extractor {
	options := extractorOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Extractor{
		logger: options.logger,
	}
}

// Extract はファイル内容からテキストを抽出する
func (e *Extractor) Extract(content *ingestion.FileContent) (string, error) {
	mimeType := normalizeMIMEType(content.MIMEType)

	switch {
	case strings.HasPrefix(mimeType, "text/"):
		return string(content.Data), nil
	case mimeType == mimeDocx:
		return extractDocx(content.Data)
	case mimeType == mimePDF:
		return extractPDF(content.Data)
	default:
		e.logger.Warn("未対応のファイル形式のためスキップ",
			"fileName", content.Name,
			"mimeType", content.MIMEType,
		)
		return "", nil
	}
}

// normalizeMIMEType はパラメータ付きMIMEタイプ（"text/plain; charset=utf-8" など）を
// メディアタイプ部分だけに正規化する
func normalizeMIMEType(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
