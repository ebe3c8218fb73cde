package commands

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/jinford/editpilot/internal/interface/api"
)

// ServerStartAction はHTTPサーバを起動するコマンドのアクション
func ServerStartAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	port := cmd.Int("port")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if port == 0 {
		port = appCtx.Config.Server.Port
	}

	slog.Info("サーバを起動します", slog.Int("port", port))

	server := api.NewServer(
		appCtx.Container.AssistantService,
		appCtx.Container.IndexingService,
		port,
		appCtx.Logger(),
	)
	return server.Start(ctx)
}
