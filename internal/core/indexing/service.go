package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jinford/editpilot/internal/core/discovery"
	"github.com/jinford/editpilot/internal/core/llm"
	"github.com/jinford/editpilot/internal/core/vectorstore"
)

// embedBatchSize はEmbedding APIの1リクエストに載せる最大件数
const embedBatchSize = 100

// ReindexResult はプロジェクト再インデックスの件数サマリ
type ReindexResult struct {
	// Indexed はEmbeddingを登録したファイル数
	Indexed int `json:"indexed"`
	// Skipped は除外パターンまたは空コンテンツで飛ばしたファイル数
	Skipped int `json:"skipped"`
}

// Service はファイル単位のEmbeddingレコードのライフサイクルを管理する。
//
// レコードIDはfileIDから決定的に導出されるため、同じファイルの再インデックスは
// 常に既存レコードの上書きになる。
type Service struct {
	files    discovery.FileReader
	vectors  vectorstore.Store
	embedder llm.Embedder
	filter   *IgnoreFilter
	logger   *slog.Logger
}

// ServiceOption はServiceのオプション設定
type ServiceOption func(*Service)

// WithIgnoreFilter は除外フィルタを差し替える
func WithIgnoreFilter(filter *IgnoreFilter) ServiceOption {
	return func(s *Service) {
		if filter != nil {
			s.filter = filter
		}
	}
}

// WithLogger はロガーを差し替える
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService は新しいインデックスサービスを作成する
func NewService(files discovery.FileReader, vectors vectorstore.Store, embedder llm.Embedder, opts ...ServiceOption) *Service {
	if files == nil {
		panic("indexing.NewService: file reader is nil")
	}
	if vectors == nil {
		panic("indexing.NewService: vector store is nil")
	}
	if embedder == nil {
		panic("indexing.NewService: embedder is nil")
	}

	s := &Service{
		files:    files,
		vectors:  vectors,
		embedder: embedder,
		filter:   NewIgnoreFilter(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexFile はファイル1件のEmbeddingレコードを更新する。
// コンテンツが空になったファイルは検索にヒットさせないため、レコードを削除する。
func (s *Service) IndexFile(ctx context.Context, file *discovery.File) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	recordID := vectorstore.RecordID(file.ID)

	if strings.TrimSpace(file.Content) == "" {
		if err := s.vectors.Delete(ctx, []string{recordID}); err != nil {
			return fmt.Errorf("failed to delete embedding record: %w", err)
		}
		s.logger.Debug("空コンテンツのためEmbeddingレコードを削除",
			slog.String("recordId", recordID), slog.String("file", file.Name))
		return nil
	}

	vector, err := s.embedder.Embed(ctx, file.Content)
	if err != nil {
		return fmt.Errorf("failed to embed file content: %w", err)
	}

	record := vectorstore.Record{
		ID:     recordID,
		Values: vector,
		Metadata: vectorstore.Metadata{
			ProjectID: file.ProjectID.String(),
			FileID:    file.ID.String(),
			FileName:  file.Name,
		},
	}
	if err := s.vectors.Upsert(ctx, []vectorstore.Record{record}); err != nil {
		return fmt.Errorf("failed to upsert embedding record: %w", err)
	}

	s.logger.Info("ファイルをインデックスしました",
		slog.String("recordId", recordID), slog.String("file", file.Name))
	return nil
}

// RemoveFile はファイルに対応するEmbeddingレコードを削除する
func (s *Service) RemoveFile(ctx context.Context, fileID uuid.UUID) error {
	recordID := vectorstore.RecordID(fileID)
	if err := s.vectors.Delete(ctx, []string{recordID}); err != nil {
		return fmt.Errorf("failed to delete embedding record: %w", err)
	}
	return nil
}

// ReindexProject はプロジェクト内の全ファイルを再インデックスする。
// 除外パターンにマッチするファイルと空コンテンツのファイルは飛ばす。
func (s *Service) ReindexProject(ctx context.Context, projectID uuid.UUID) (*ReindexResult, error) {
	files, err := s.files.ListByProject(ctx, projectID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}

	result := &ReindexResult{}

	targets := make([]*discovery.File, 0, len(files))
	for _, f := range files {
		if s.filter.ShouldIgnore(f.Name) || strings.TrimSpace(f.Content) == "" {
			result.Skipped++
			continue
		}
		targets = append(targets, f)
	}

	for start := 0; start < len(targets); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[start:end]

		texts := make([]string, len(batch))
		for i, f := range batch {
			texts[i] = f.Content
		}

		vectors, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
		}

		records := make([]vectorstore.Record, len(batch))
		for i, f := range batch {
			records[i] = vectorstore.Record{
				ID:     vectorstore.RecordID(f.ID),
				Values: vectors[i],
				Metadata: vectorstore.Metadata{
					ProjectID: f.ProjectID.String(),
					FileID:    f.ID.String(),
					FileName:  f.Name,
				},
			}
		}
		if err := s.vectors.Upsert(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to upsert embedding records: %w", err)
		}
		result.Indexed += len(records)
	}

	s.logger.Info("プロジェクトを再インデックスしました",
		slog.String("projectId", projectID.String()),
		slog.Int("indexed", result.Indexed),
		slog.Int("skipped", result.Skipped))

	return result, nil
}
