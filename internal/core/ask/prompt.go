package ask

import (
	"fmt"
	"strings"

	"github.com/jinford/drive-rag/internal/core/search"
)

// DefaultContextTokenBudget はコンテキストに割り当てるデフォルトのトークン数上限
const DefaultContextTokenBudget = 6000

// TokenCounter はテキストのトークン数をカウントするインターフェース
type TokenCounter interface {
	// CountTokens はテキストのトークン数をカウントします
	CountTokens(text string) int
}

// PromptBuilder は質問応答用プロンプトを構築する
// 検索結果はトークン数上限に収まる分だけスコアの高い順に採用する
type PromptBuilder struct {
	tokenCounter TokenCounter
	tokenBudget  int
}

// NewPromptBuilder は新しいPromptBuilderを作成する
// tokenBudget が0以下の場合は DefaultContextTokenBudget を使用する
func NewPromptBuilder(tokenCounter TokenCounter, tokenBudget int) *PromptBuilder {
	if tokenBudget <= 0 {
		tokenBudget = DefaultContextTokenBudget
	}

	return &PromptBuilder{
		tokenCounter: tokenCounter,
		tokenBudget:  tokenBudget,
	}
}

// Build はRAG質問応答用のプロンプトを構築する
// 検索結果が空の場合もプロンプトは構築される（コンテキストなしの旨を明記）
func (b *PromptBuilder) Build(query string, records []*search.RetrievedRecord) string {
	var sb strings.Builder

	sb.WriteString("あなたはGoogle Drive上の社内文書に精通したアシスタントです。\n")
	sb.WriteString("以下のコンテキスト情報を基に、ユーザーの質問に正確に回答してください。\n\n")

	sb.WriteString("## 回答のガイドライン\n")
	sb.WriteString("- コンテキストに含まれる情報のみを使用して回答してください\n")
	sb.WriteString("- コンテキストが不足している場合は、推測せずにその旨を述べてください\n")
	sb.WriteString("- 必ず次のキーを持つJSONオブジェクトのみを出力してください\n")
	sb.WriteString("  - answer: 質問への回答（文字列）\n")
	sb.WriteString("  - thought_process: 回答に至るまでの思考過程（文字列の配列）\n")
	sb.WriteString("  - enough_context: コンテキストが回答に十分だったか（真偽値）\n\n")

	sb.WriteString("## コンテキスト: 関連文書\n")
	included := b.selectRecords(records)
	if len(included) > 0 {
		for i, record := range included {
			sb.WriteString(fmt.Sprintf("### [文書断片 %d]\n", i+1))
			sb.WriteString(fmt.Sprintf("ファイル名: %s\n", record.FileName))
			sb.WriteString(fmt.Sprintf("関連度スコア: %.3f\n", record.Score))
			sb.WriteString(record.Contents)
			sb.WriteString("\n\n")
		}
	} else {
		sb.WriteString("(該当する文書はありません)\n\n")
	}

	sb.WriteString("## ユーザーの質問\n")
	sb.WriteString(query)
	sb.WriteString("\n")

	return sb.String()
}

// selectRecords はトークン数上限に収まる範囲で検索結果を先頭から採用する
// records は類似度の降順で渡される前提
func (b *PromptBuilder) selectRecords(records []*search.RetrievedRecord) []*search.RetrievedRecord {
	if b.tokenCounter == nil {
		return records
	}

	var included []*search.RetrievedRecord
	usedTokens := 0
	for _, record := range records {
		tokens := b.tokenCounter.CountTokens(record.Contents)
		if usedTokens+tokens > b.tokenBudget {
			break
		}
		usedTokens += tokens
		included = append(included, record)
	}

	return included
}
