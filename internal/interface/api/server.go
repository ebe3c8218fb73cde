package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/jinford/editpilot/internal/core/assistant"
	"github.com/jinford/editpilot/internal/core/indexing"
)

const (
	readTimeout  = 30 * time.Second
	writeTimeout = 120 * time.Second
)

// Server はアシスタントAPIを提供するHTTPサーバー
type Server struct {
	app    *fiber.App
	port   int
	logger *slog.Logger
}

// NewServer は新しいServerを作成します
func NewServer(assistantSvc *assistant.Service, indexingSvc *indexing.Service, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:      "editpilot",
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	handler := NewAssistantHandler(assistantSvc, indexingSvc, logger)
	handler.Register(app)

	return &Server{
		app:    app,
		port:   port,
		logger: logger,
	}
}

// Start はサーバーを起動し、ctxのキャンセルでグレースフルに停止します
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTPサーバーを起動します", slog.Int("port", s.port))
		errCh <- s.app.Listen(fmt.Sprintf(":%d", s.port))
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTPサーバーを停止します")
		if err := s.app.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
