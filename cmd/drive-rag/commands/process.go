package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// ProcessAction はGoogle Drive上のファイルを検索・取り込みするコマンドのアクション
func ProcessAction(ctx context.Context, cmd *cli.Command) error {
	fileName := cmd.String("file")
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	slog.Info("ファイル取り込み処理を開始", "fileName", fileName)

	result, err := appCtx.Container.IngestService.ProcessFile(ctx, fileName)
	if err != nil {
		slog.Error("ファイル取り込み処理に失敗しました", "fileName", fileName, "error", err)
		return err
	}

	if !result.Indexed {
		fmt.Printf("ファイル '%s' は見つからないか、テキストを抽出できませんでした\n", fileName)
		return nil
	}

	fmt.Printf("ファイル '%s' を %d チャンクとして保存しました（所要時間: %s）\n",
		result.FileName, result.ChunkCount, result.Duration)
	return nil
}
