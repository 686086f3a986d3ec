package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/jinford/drive-rag/internal/core/ask"
)

// MenuAction は対話形式でファイル取り込みと質問応答を行うコマンドのアクション
func MenuAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Println()
		fmt.Println("=== Drive RAG ===")
		fmt.Println("1. ファイルを取り込む")
		fmt.Println("2. 質問する")
		fmt.Println("3. 終了")
		fmt.Print("> ")

		choice, ok := readLine(scanner)
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			if err := menuProcess(ctx, appCtx, scanner); err != nil {
				fmt.Printf("エラー: %v\n", err)
			}
		case "2":
			if err := menuAsk(ctx, appCtx, scanner); err != nil {
				fmt.Printf("エラー: %v\n", err)
			}
		case "3":
			fmt.Println("終了します")
			return nil
		default:
			fmt.Println("1〜3を入力してください")
		}
	}
}

func menuProcess(ctx context.Context, appCtx *AppContext, scanner *bufio.Scanner) error {
	fmt.Print("ファイル名: ")
	fileName, ok := readLine(scanner)
	if !ok || fileName == "" {
		return nil
	}

	result, err := appCtx.Container.IngestService.ProcessFile(ctx, fileName)
	if err != nil {
		return err
	}

	if !result.Indexed {
		fmt.Printf("ファイル '%s' は見つからないか、テキストを抽出できませんでした\n", fileName)
		return nil
	}

	fmt.Printf("ファイル '%s' を %d チャンクとして保存しました\n", result.FileName, result.ChunkCount)
	return nil
}

func menuAsk(ctx context.Context, appCtx *AppContext, scanner *bufio.Scanner) error {
	fmt.Print("質問: ")
	query, ok := readLine(scanner)
	if !ok || query == "" {
		return nil
	}

	result, err := appCtx.Container.AskService.Ask(ctx, ask.AskParams{Query: query})
	if err != nil {
		return err
	}

	printAskResult(result)
	return nil
}

// readLine は1行読み取ってトリムする。EOFの場合は false を返す
func readLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}
