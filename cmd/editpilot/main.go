package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/editpilot/cmd/editpilot/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定（AppContext初期化後は設定値で上書きされる）
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "editpilot",
		Usage: "執筆・コーディング支援アシスタントのバックエンド",
		Commands: []*cli.Command{
			{
				Name:  "ask",
				Usage: "アシスタントへワンショットのリクエストを送る",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "text",
						Usage:    "リクエスト本文",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "project",
						Usage:    "プロジェクトID (UUID)",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "file",
						Usage: "コンテキストに含めるファイル名（複数指定可）",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "応答をJSONで出力",
					},
				},
				Action: commands.AskAction,
			},
			{
				Name:  "index",
				Usage: "インデックス管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "project",
						Usage: "プロジェクト全体を再インデックス化",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "project",
								Usage:    "プロジェクトID (UUID)",
								Required: true,
							},
						},
						Action: commands.IndexProjectAction,
					},
				},
			},
			{
				Name:  "server",
				Usage: "サーバ関連コマンド",
				Commands: []*cli.Command{
					{
						Name:  "start",
						Usage: "HTTPサーバを起動",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.IntFlag{
								Name:  "port",
								Usage: "HTTPポート（省略時は環境変数またはデフォルトの8080）",
							},
						},
						Action: commands.ServerStartAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
