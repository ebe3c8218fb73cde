package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// IndexProjectAction はプロジェクト全体を再インデックスするコマンドのアクション
func IndexProjectAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	project := cmd.String("project")

	projectID, err := uuid.Parse(project)
	if err != nil {
		return fmt.Errorf("プロジェクトIDが不正です: %w", err)
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	slog.Info("プロジェクトの再インデックスを開始", slog.String("projectId", project))

	result, err := appCtx.Container.IndexingService.ReindexProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("再インデックスに失敗: %w", err)
	}

	fmt.Printf("インデックス完了: %d件登録 / %d件スキップ\n", result.Indexed, result.Skipped)
	return nil
}
