package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/drive-rag/cmd/drive-rag/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "drive-rag",
		Usage: "Google Drive文書を対象としたRAG質問応答システム",
		Commands: []*cli.Command{
			{
				Name:  "setup",
				Usage: "データベースのテーブルとベクトルインデックスを作成",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
				},
				Action: commands.SetupAction,
			},
			{
				Name:  "process",
				Usage: "Google Drive上のファイルを検索してインデックス化",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "file",
						Usage:    "検索するファイル名（部分一致）",
						Required: true,
					},
				},
				Action: commands.ProcessAction,
			},
			{
				Name:  "ask",
				Usage: "保存済み文書に対して質問する",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "query",
						Usage:    "質問文",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "検索で取得するチャンク数（省略時は5）",
					},
				},
				Action: commands.AskAction,
			},
			{
				Name:  "serve",
				Usage: "HTTP APIサーバーを起動",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "リッスンアドレス（省略時は環境変数またはデフォルトの:8000）",
					},
				},
				Action: commands.ServeAction,
			},
			{
				Name:  "menu",
				Usage: "対話形式でファイル取り込みと質問応答を行う",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
				},
				Action: commands.MenuAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
