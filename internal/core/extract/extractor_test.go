package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/jinford/drive-rag/internal/core/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDocx はテスト用の最小構成の.docxアーカイブを生成する
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	e := New()

	text, err := e.Extract(&ingestion.FileContent{
		Name:     "memo.txt",
		MIMEType: "text/plain",
		Data:     []byte("プレーンテキストの内容"),
	})

	require.NoError(t, err)
	assert.Equal(t, "プレーンテキストの内容", text)
}

func TestExtractTextWithCharsetParameter(t *testing.T) {
	e := New()

	text, err := e.Extract(&ingestion.FileContent{
		Name:     "memo.txt",
		MIMEType: "text/plain; charset=utf-8",
		Data:     []byte("content"),
	})

	require.NoError(t, err)
	assert.Equal(t, "content", text)
}

func TestExtractCSV(t *testing.T) {
	e := New()

	// スプレッドシートはCSVとしてエクスポートされて届く
	text, err := e.Extract(&ingestion.FileContent{
		Name:     "売上データ",
		MIMEType: "text/csv",
		Data:     []byte("date,amount\n2024-01-01,1000"),
	})

	require.NoError(t, err)
	assert.Equal(t, "date,amount\n2024-01-01,1000", text)
}

func TestExtractDocx(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>最初の段落</t></r></p>
    <p><r><t>2番目の</t></r><r><t>段落</t></r></p>
  </body>
</document>`

	e := New()
	text, err := e.Extract(&ingestion.FileContent{
		Name:     "document.docx",
		MIMEType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:     buildDocx(t, docXML),
	})

	require.NoError(t, err)
	assert.Equal(t, "最初の段落\n2番目の段落", text)
}

func TestExtractDocxWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	e := New()
	text, err := e.Extract(&ingestion.FileContent{
		Name:     "broken.docx",
		MIMEType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:     buf.Bytes(),
	})

	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractInvalidDocx(t *testing.T) {
	e := New()

	_, err := e.Extract(&ingestion.FileContent{
		Name:     "notzip.docx",
		MIMEType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:     []byte("this is not a zip archive"),
	})

	assert.Error(t, err)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := New()

	text, err := e.Extract(&ingestion.FileContent{
		Name:     "movie.mp4",
		MIMEType: "video/mp4",
		Data:     []byte{0x00, 0x01, 0x02},
	})

	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractInvalidPDF(t *testing.T) {
	e := New()

	_, err := e.Extract(&ingestion.FileContent{
		Name:     "broken.pdf",
		MIMEType: "application/pdf",
		Data:     []byte("not a pdf"),
	})

	assert.Error(t, err)
}
