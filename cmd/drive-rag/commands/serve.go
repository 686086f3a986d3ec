package commands

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/jinford/drive-rag/internal/server"
)

// ServeAction はHTTP APIサーバーを起動するコマンドのアクション
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if addr == "" {
		addr = appCtx.Config.Server.Addr
	}

	srv := server.New(
		appCtx.Container.IngestService,
		appCtx.Container.AskService,
		server.WithServerLogger(appCtx.Logger()),
	)

	if err := srv.Run(ctx, addr); err != nil {
		slog.Error("HTTPサーバーの実行に失敗しました", "addr", addr, "error", err)
		return err
	}

	return nil
}
