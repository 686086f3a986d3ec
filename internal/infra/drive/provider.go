package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/mo"
	drive "google.golang.org/api/drive/v3"

	"github.com/jinford/drive-rag/internal/core/ingestion"
)

// エクスポート可能なGoogleネイティブ形式のMIMEタイプ
const (
	MimeTypeGoogleDoc   = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet = "application/vnd.google-apps.spreadsheet"

	// ExportMimeText はGoogleドキュメントのエクスポート形式
	ExportMimeText = "text/plain"
	// ExportMimeCSV はスプレッドシートのエクスポート形式
	ExportMimeCSV = "text/csv"

	// MaxDownloadSize はダウンロードするコンテンツの上限サイズ（10MB）
	MaxDownloadSize = 10 * 1024 * 1024

	// searchPageSize は検索時の取得件数上限
	searchPageSize = 10
)

var _ ingestion.FileProvider = (*Provider)(nil)

// Provider はGoogle Drive APIを使用した ingestion.FileProvider 実装
type Provider struct {
	service *drive.Service
	logger  *slog.Logger
}

type providerOptions struct {
	logger *slog.Logger
}

// ProviderOption は Provider のオプション設定
type ProviderOption func(*providerOptions)

// WithProviderLogger は Provider にロガーを設定する
func WithProviderLogger(logger *slog.Logger) ProviderOption {
	return func(o *providerOptions) {
		o.logger = logger
	}
}

// NewProvider は新しい Provider を作成する
func NewProvider(service *drive.Service, opts ...ProviderOption) *Provider {
	options := providerOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Provider{
		service: service,
		logger:  options.logger,
	}
}

// SearchFile は名前の部分一致でファイルを検索し、最初に見つかったファイルを返す
// ゴミ箱内のファイルは対象外
func (p *Provider) SearchFile(ctx context.Context, name string) (mo.Option[ingestion.FileRef], error) {
	query := fmt.Sprintf("name contains '%s' and trashed = false", escapeQuery(name))

	result, err := p.service.Files.List().
		Q(query).
		PageSize(searchPageSize).
		Fields("files(id, name, mimeType)").
		Context(ctx).
		Do()
	if err != nil {
		return mo.None[ingestion.FileRef](), fmt.Errorf("failed to search files: %w", err)
	}

	if len(result.Files) == 0 {
		return mo.None[ingestion.FileRef](), nil
	}

	file := result.Files[0]
	p.logger.Debug("ファイルを検索",
		"query", name,
		"hits", len(result.Files),
		"selected", file.Name,
	)

	return mo.Some(ingestion.FileRef{
		ID:       file.Id,
		Name:     file.Name,
		MIMEType: file.MimeType,
	}), nil
}

// DownloadFile はファイルの内容を取得する
//
// Googleドキュメントはプレーンテキストとして、スプレッドシートはCSVとして
// エクスポートし、FileContent のMIMEタイプはエクスポート後のものに置き換える。
// それ以外の形式はそのままダウンロードする
func (p *Provider) DownloadFile(ctx context.Context, fileID string) (*ingestion.FileContent, error) {
	file, err := p.service.Files.Get(fileID).
		Fields("id, name, mimeType").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file metadata: %w", err)
	}

	var (
		data     []byte
		mimeType string
	)

	switch file.MimeType {
	case MimeTypeGoogleDoc:
		data, err = p.export(ctx, fileID, ExportMimeText)
		mimeType = ExportMimeText
	case MimeTypeGoogleSheet:
		data, err = p.export(ctx, fileID, ExportMimeCSV)
		mimeType = ExportMimeCSV
	default:
		data, err = p.download(ctx, fileID)
		mimeType = file.MimeType
	}
	if err != nil {
		return nil, err
	}

	return &ingestion.FileContent{
		Name:     file.Name,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// export はGoogleネイティブ形式のファイルを指定形式でエクスポートする
func (p *Provider) export(ctx context.Context, fileID, exportMime string) ([]byte, error) {
	resp, err := p.service.Files.Export(fileID, exportMime).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to export file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	return data, nil
}

// download は通常のファイルの内容をダウンロードする
func (p *Provider) download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := p.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	return data, nil
}

// escapeQuery はDrive API検索クエリ内の文字列リテラルをエスケープする
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}
