package ask

import (
	"strings"
	"testing"

	"github.com/jinford/drive-rag/internal/core/search"
	"github.com/stretchr/testify/assert"
)

// fakeTokenCounter は文字数をそのままトークン数とみなすテスト用カウンター
type fakeTokenCounter struct{}

func (f *fakeTokenCounter) CountTokens(text string) int {
	return len([]rune(text))
}

func TestPromptBuilderBuild(t *testing.T) {
	builder := NewPromptBuilder(&fakeTokenCounter{}, 0)

	records := []*search.RetrievedRecord{
		{Contents: "文書Aの内容", FileName: "a.txt", Score: 0.9},
		{Contents: "文書Bの内容", FileName: "b.txt", Score: 0.8},
	}

	prompt := builder.Build("質問です", records)

	assert.Contains(t, prompt, "文書Aの内容")
	assert.Contains(t, prompt, "文書Bの内容")
	assert.Contains(t, prompt, "a.txt")
	assert.Contains(t, prompt, "質問です")
	assert.Contains(t, prompt, "enough_context")
	assert.Contains(t, prompt, "thought_process")
}

func TestPromptBuilderTrimsToTokenBudget(t *testing.T) {
	// 予算60トークン: 50トークンの文書1件だけが収まる
	builder := NewPromptBuilder(&fakeTokenCounter{}, 60)

	records := []*search.RetrievedRecord{
		{Contents: strings.Repeat("あ", 50), FileName: "first.txt", Score: 0.9},
		{Contents: strings.Repeat("い", 50), FileName: "second.txt", Score: 0.8},
	}

	prompt := builder.Build("質問", records)

	assert.Contains(t, prompt, "first.txt")
	assert.NotContains(t, prompt, "second.txt")
}

func TestPromptBuilderEmptyRecords(t *testing.T) {
	builder := NewPromptBuilder(&fakeTokenCounter{}, 0)

	prompt := builder.Build("質問", nil)

	assert.Contains(t, prompt, "該当する文書はありません")
	assert.Contains(t, prompt, "質問")
}

func TestPromptBuilderNilTokenCounterIncludesAll(t *testing.T) {
	builder := NewPromptBuilder(nil, 10)

	records := []*search.RetrievedRecord{
		{Contents: strings.Repeat("あ", 100), FileName: "a.txt", Score: 0.9},
		{Contents: strings.Repeat("い", 100), FileName: "b.txt", Score: 0.8},
	}

	prompt := builder.Build("質問", records)

	assert.Contains(t, prompt, "a.txt")
	assert.Contains(t, prompt, "b.txt")
}
