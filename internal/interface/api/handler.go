package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/jinford/editpilot/internal/core/assistant"
	"github.com/jinford/editpilot/internal/core/indexing"
)

// AssistantHandler はアシスタントAPIのHTTPハンドラー
type AssistantHandler struct {
	assistant *assistant.Service
	indexing  *indexing.Service
	logger    *slog.Logger
}

// NewAssistantHandler は新しいAssistantHandlerを作成します
func NewAssistantHandler(assistantSvc *assistant.Service, indexingSvc *indexing.Service, logger *slog.Logger) *AssistantHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistantHandler{
		assistant: assistantSvc,
		indexing:  indexingSvc,
		logger:    logger,
	}
}

// Register はルートを登録します
func (h *AssistantHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	api.Post("/assistant", h.HandleAssistant)
	api.Post("/projects/:projectID/reindex", h.HandleReindex)
}

type assistantRequestBody struct {
	Text         string              `json:"text"`
	ContextFiles []string            `json:"contextFiles"`
	ProjectID    string              `json:"projectId"`
	History      []assistant.Message `json:"history"`
}

// HandleAssistant はユーザーリクエストを処理して回答または変更候補を返します
func (h *AssistantHandler) HandleAssistant(c fiber.Ctx) error {
	var body assistantRequestBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	projectID, err := uuid.Parse(body.ProjectID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}

	resp, err := h.assistant.HandleRequest(c.Context(), assistant.Request{
		Text:         body.Text,
		ContextFiles: body.ContextFiles,
		ProjectID:    projectID,
		History:      body.History,
	})
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, assistant.ErrNoCandidateFiles):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			h.logger.Error("アシスタントリクエストの処理に失敗", slog.Any("error", err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}

	return c.JSON(resp)
}

// HandleReindex はプロジェクト全体の再インデックスを実行します
func (h *AssistantHandler) HandleReindex(c fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectID"})
	}

	result, err := h.indexing.ReindexProject(c.Context(), projectID)
	if err != nil {
		h.logger.Error("再インデックスに失敗",
			slog.String("projectId", projectID.String()), slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(result)
}
