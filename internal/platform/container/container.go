package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/editpilot/internal/core/assistant"
	"github.com/jinford/editpilot/internal/core/discovery"
	"github.com/jinford/editpilot/internal/core/indexing"
	corellm "github.com/jinford/editpilot/internal/core/llm"
	"github.com/jinford/editpilot/internal/core/suggest"
	"github.com/jinford/editpilot/internal/core/vectorstore"
	"github.com/jinford/editpilot/internal/infra/openai"
	"github.com/jinford/editpilot/internal/infra/postgres"
	"github.com/jinford/editpilot/internal/platform/config"
	"github.com/jinford/editpilot/internal/platform/database"
)

// ServiceContainer はアプリケーション全体の依存関係を保持する
type ServiceContainer struct {
	AssistantService *assistant.Service
	DiscoveryService *discovery.Service
	IndexingService  *indexing.Service
	SuggestEngine    *suggest.Engine
	VectorStore      vectorstore.Store

	logger   *slog.Logger
	database *database.Database
}

type containerOptions struct {
	logger    *slog.Logger
	embedder  corellm.Embedder
	llmClient corellm.Client
	files     discovery.FileReader
	vectors   vectorstore.Store
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder corellm.Embedder) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerLLMClient は LLM クライアントを差し替える
func WithContainerLLMClient(client corellm.Client) ContainerOption {
	return func(opts *containerOptions) {
		opts.llmClient = client
	}
}

// WithContainerFileReader はファイルリーダーを差し替える
func WithContainerFileReader(files discovery.FileReader) ContainerOption {
	return func(opts *containerOptions) {
		opts.files = files
	}
}

// WithContainerVectorStore はベクトルストアを差し替える
func WithContainerVectorStore(store vectorstore.Store) ContainerOption {
	return func(opts *containerOptions) {
		opts.vectors = store
	}
}

// NewContainer は設定からコンテナを生成する
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	db, err := database.New(ctx, database.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
	}

	container, err := NewContainerWithDB(cfg, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return container, nil
}

// NewContainerWithDB は既存の Database を受け取りコンテナを生成する
func NewContainerWithDB(cfg *config.Config, db *database.Database, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	// Embedder (OpenAI)
	embedder := options.embedder
	if embedder == nil {
		embedder = openai.NewEmbedder(
			cfg.OpenAI.APIKey,
			openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
		)
	}

	// LLMクライアント (OpenAI)
	llmClient := options.llmClient
	if llmClient == nil {
		client, err := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.CompletionModel)
		if err != nil {
			return nil, fmt.Errorf("OpenAIクライアント初期化に失敗しました: %w", err)
		}
		llmClient = client
	}

	// ファイルストア (PostgreSQL)
	files := options.files
	if files == nil && db != nil {
		files = postgres.NewFileRepository(db.Pool)
	}
	if files == nil {
		return nil, fmt.Errorf("ファイルリーダーが構成されていません")
	}

	// ベクトルストア: pgvector を永続層、インメモリを縮退時の代替とする
	vectors := options.vectors
	if vectors == nil {
		if db == nil {
			return nil, fmt.Errorf("ベクトルストアが構成されていません")
		}
		durable := postgres.NewVectorRepository(db.Pool)
		fallback := vectorstore.NewMemoryStore()
		vectors = vectorstore.NewResilientStore(durable, fallback,
			vectorstore.WithResilientLogger(options.logger))
	}

	// DiscoveryService
	discoveryService := discovery.NewService(
		files,
		vectors,
		embedder,
		discovery.WithTopK(cfg.Pipeline.SearchTopK),
		discovery.WithLogger(options.logger),
	)

	// SuggestEngine
	suggestEngine, err := suggest.NewEngine(
		llmClient,
		suggest.WithConcurrency(cfg.Pipeline.SuggestConcurrency),
		suggest.WithTokenBudget(cfg.Pipeline.PromptTokenBudget),
		suggest.WithEngineLogger(options.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("提案エンジン初期化に失敗しました: %w", err)
	}

	// IndexingService
	indexingService := indexing.NewService(
		files,
		vectors,
		embedder,
		indexing.WithLogger(options.logger),
	)

	// AssistantService
	router := assistant.NewRouter(llmClient, assistant.WithRouterLogger(options.logger))
	assistantService := assistant.NewService(
		router,
		discoveryService,
		suggestEngine,
		llmClient,
		files,
		assistant.WithServiceLogger(options.logger),
	)

	return &ServiceContainer{
		AssistantService: assistantService,
		DiscoveryService: discoveryService,
		IndexingService:  indexingService,
		SuggestEngine:    suggestEngine,
		VectorStore:      vectors,
		logger:           options.logger,
		database:         db,
	}, nil
}

// Close はコンテナが保持するリソースを解放する
func (c *ServiceContainer) Close() {
	if c.database != nil {
		c.database.Close()
	}
}
