package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/jinford/drive-rag/internal/core/ask"
)

// AskAction は保存済み文書に対する質問応答コマンドのアクション
func AskAction(ctx context.Context, cmd *cli.Command) error {
	query := cmd.String("query")
	limit := cmd.Int("limit")
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	slog.Info("質問応答を開始", "query", query, "limit", limit)

	result, err := appCtx.Container.AskService.Ask(ctx, ask.AskParams{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		slog.Error("質問応答に失敗しました", "query", query, "error", err)
		return err
	}

	printAskResult(result)
	return nil
}

// printAskResult は回答・思考プロセス・参照元を標準出力に整形して表示する
func printAskResult(result *ask.AskResult) {
	fmt.Println("=== 回答 ===")
	fmt.Println(result.Response.Answer)

	if len(result.Response.ThoughtProcess) > 0 {
		fmt.Println()
		fmt.Println("=== 思考プロセス ===")
		for i, step := range result.Response.ThoughtProcess {
			fmt.Printf("%d. %s\n", i+1, step)
		}
	}

	if !result.Response.EnoughContext {
		fmt.Println()
		fmt.Println("※ 取得した文書だけでは回答に十分なコンテキストが得られていません")
	}

	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println("=== 参照元 ===")
		for _, src := range result.Sources {
			fmt.Printf("- %s (chunk %d, score %.3f)\n", src.FileName, src.ChunkIndex, src.Score)
		}
	}
}
