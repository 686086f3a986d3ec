package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/jinford/drive-rag/internal/infra/postgres"
	"github.com/jinford/drive-rag/internal/platform/config"
	"github.com/jinford/drive-rag/internal/platform/logger"
)

// SetupAction はデータベースのテーブルとベクトルインデックスを作成するコマンドのアクション
// Drive / OpenAI の認証情報は不要なため、コンテナ全体は初期化せずDBのみ接続する
func SetupAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	logger.New(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: "json",
	})

	slog.Info("データベースのセットアップを開始", "host", cfg.Database.Host, "dbName", cfg.Database.DBName)

	pool, err := postgres.Connect(ctx, postgres.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return fmt.Errorf("データベース接続に失敗: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool, postgres.WithDimension(cfg.OpenAI.EmbeddingDimension))

	if err := store.CreateTables(ctx); err != nil {
		return fmt.Errorf("テーブル作成に失敗: %w", err)
	}
	slog.Info("テーブルを作成しました", "dimension", cfg.OpenAI.EmbeddingDimension)

	if err := store.CreateVectorIndex(ctx); err != nil {
		return fmt.Errorf("ベクトルインデックス作成に失敗: %w", err)
	}
	slog.Info("ベクトルインデックスを作成しました")

	fmt.Println("データベースのセットアップが完了しました")
	return nil
}
