package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jinford/editpilot/internal/core/discovery"
	"github.com/jinford/editpilot/internal/core/llm"
	"github.com/jinford/editpilot/internal/core/suggest"
)

const (
	// answerTemperature は文章回答系パスの生成温度
	answerTemperature = 0.2
)

// Service はリクエストを意図ごとのパイプラインへ振り分けるアシスタント本体
type Service struct {
	router    *Router
	discovery *discovery.Service
	engine    *suggest.Engine
	client    llm.Client
	files     discovery.FileReader
	logger    *slog.Logger
}

// ServiceOption はServiceのオプション設定
type ServiceOption func(*Service)

// WithServiceLogger はロガーを差し替える
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService は新しいアシスタントサービスを作成する
func NewService(
	router *Router,
	discoveryService *discovery.Service,
	engine *suggest.Engine,
	client llm.Client,
	files discovery.FileReader,
	opts ...ServiceOption,
) *Service {
	if router == nil {
		panic("assistant.NewService: router is nil")
	}
	if discoveryService == nil {
		panic("assistant.NewService: discovery service is nil")
	}
	if engine == nil {
		panic("assistant.NewService: suggest engine is nil")
	}
	if client == nil {
		panic("assistant.NewService: llm client is nil")
	}
	if files == nil {
		panic("assistant.NewService: file reader is nil")
	}

	s := &Service{
		router:    router,
		discovery: discoveryService,
		engine:    engine,
		client:    client,
		files:     files,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleRequest はリクエストを分類し、対応するパイプラインの結果を返す
func (s *Service) HandleRequest(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyRequest
	}

	intent := s.router.Classify(ctx, req.Text, len(req.ContextFiles) > 0)
	s.logger.Info("リクエストを分類しました",
		slog.String("intent", string(intent)),
		slog.String("projectId", req.ProjectID.String()))

	switch intent {
	case IntentEdit:
		return s.handleEdit(ctx, req)
	case IntentRetrieval:
		return s.handleRetrieval(ctx, req)
	default:
		return s.handleStandard(ctx, req)
	}
}

// handleEdit は候補ファイルを集めて差分提案を生成する
func (s *Service) handleEdit(ctx context.Context, req Request) (*Response, error) {
	candidates, err := s.discovery.Discover(ctx, req.Text, req.ContextFiles, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to discover candidate files: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidateFiles
	}

	proposal := s.engine.ProposeAll(ctx, candidates, req.Text)

	return &Response{
		Result:      proposal.Summary,
		Suggestions: proposal.Changes,
		FilesToOpen: proposal.FilesChanged,
	}, nil
}

// handleRetrieval はベクトル検索で集めたファイルを根拠に回答を生成する
func (s *Service) handleRetrieval(ctx context.Context, req Request) (*Response, error) {
	candidates, err := s.discovery.Discover(ctx, req.Text, req.ContextFiles, req.ProjectID)
	if err != nil {
		s.logger.Warn("候補ファイルの取得に失敗したためコンテキストなしで回答します", slog.Any("error", err))
		candidates = nil
	}

	prompt := BuildRetrievalPrompt(req.Text, candidates)
	resp, err := s.client.GenerateCompletion(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate retrieval answer: %w", err)
	}

	return &Response{Result: resp.Content}, nil
}

// handleStandard は会話履歴と明示コンテキストのみで回答を生成する
func (s *Service) handleStandard(ctx context.Context, req Request) (*Response, error) {
	contextFiles := s.loadContextFiles(ctx, req.ProjectID, req.ContextFiles)

	prompt := BuildChatPrompt(req.Text, req.History, contextFiles)
	resp, err := s.client.GenerateCompletion(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &Response{Result: resp.Content}, nil
}

// loadContextFiles は名前指定されたファイルを取得する。見つからないものは黙って飛ばす
func (s *Service) loadContextFiles(ctx context.Context, projectID uuid.UUID, names []string) []discovery.CandidateFile {
	if len(names) == 0 {
		return nil
	}

	files := make([]discovery.CandidateFile, 0, len(names))
	for _, name := range names {
		found, err := s.files.GetByName(ctx, projectID, name)
		if err != nil {
			s.logger.Warn("コンテキストファイルの取得に失敗",
				slog.String("name", name), slog.Any("error", err))
			continue
		}
		f, ok := found.Get()
		if !ok {
			continue
		}
		files = append(files, discovery.CandidateFile{
			FileID:      f.ID,
			Name:        f.Name,
			Content:     f.Content,
			ContentType: f.ContentType,
			Source:      discovery.SourceContext,
		})
	}
	return files
}
