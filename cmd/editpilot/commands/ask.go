package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/jinford/editpilot/internal/core/assistant"
)

// AskAction はアシスタントへのワンショットリクエストを実行するコマンドのアクション
func AskAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	text := cmd.String("text")
	project := cmd.String("project")
	contextFiles := cmd.StringSlice("file")
	asJSON := cmd.Bool("json")

	projectID, err := uuid.Parse(project)
	if err != nil {
		return fmt.Errorf("プロジェクトIDが不正です: %w", err)
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	resp, err := appCtx.Container.AssistantService.HandleRequest(ctx, assistant.Request{
		Text:         text,
		ContextFiles: contextFiles,
		ProjectID:    projectID,
	})
	if err != nil {
		return fmt.Errorf("リクエストの処理に失敗: %w", err)
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resp)
	}

	fmt.Println(resp.Result)
	if len(resp.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("変更候補:")
		for i, s := range resp.Suggestions {
			fmt.Printf("--- [%d] %s (%s)\n", i+1, s.FileName, s.ReplacementType)
			fmt.Printf("  - %s\n", indentLines(s.OldContent))
			fmt.Printf("  + %s\n", indentLines(s.NewContent))
		}
	}

	return nil
}

// indentLines は複数行テキストを1段インデントして読みやすくする
func indentLines(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}
