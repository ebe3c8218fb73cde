package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jinford/editpilot/internal/core/vectorstore"
)

const (
	// DefaultTopK はベクトル検索で取得する候補数
	DefaultTopK = 5
	// fallbackLimit は検索がゼロ件だった場合に返すファイル数の上限
	fallbackLimit = 5
	// degradedFallbackLimit は検索自体が失敗した場合の上限
	degradedFallbackLimit = 3
)

// Embedder はリクエスト文をベクトルに変換するポート
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service は編集リクエストと候補ファイル集合を突き合わせる
type Service struct {
	files    FileReader
	vectors  vectorstore.Store
	embedder Embedder
	detector *ContentTypeDetector
	topK     int
	logger   *slog.Logger
}

// ServiceOption はServiceのオプション設定
type ServiceOption func(*Service)

// WithTopK はベクトル検索の取得件数を上書きする
func WithTopK(topK int) ServiceOption {
	return func(s *Service) {
		if topK > 0 {
			s.topK = topK
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

// NewService は新しい探索サービスを作成する
func NewService(files FileReader, vectors vectorstore.Store, embedder Embedder, opts ...ServiceOption) *Service {
	if files == nil {
		panic("discovery.NewService: file reader is nil")
	}
	if vectors == nil {
		panic("discovery.NewService: vector store is nil")
	}
	if embedder == nil {
		panic("discovery.NewService: embedder is nil")
	}

	s := &Service{
		files:    files,
		vectors:  vectors,
		embedder: embedder,
		detector: NewContentTypeDetector(),
		topK:     DefaultTopK,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover はコンテキスト指定ファイルとベクトル検索結果をマージした候補集合を返す。
//
// コンテキストファイルが先、検索ヒットが後。同名ファイルは先勝ちで1回だけ含まれる。
// 検索がプロジェクト内ゼロ件の場合はプロジェクトのファイルを上限付きで返し、
// 検索処理自体が失敗した場合も同様に縮小した上限で代替する。
// 最後の手段のファイル取得まで失敗し候補が1件もない場合のみエラーを返す。
func (s *Service) Discover(ctx context.Context, request string, contextNames []string, projectID uuid.UUID) ([]CandidateFile, error) {
	candidates := make([]CandidateFile, 0, len(contextNames)+s.topK)
	seen := make(map[string]bool)

	// (1) 呼び出し側が指定したコンテキストファイル（名前で検索）
	for _, name := range contextNames {
		found, err := s.files.GetByName(ctx, projectID, name)
		if err != nil {
			s.logger.Warn("コンテキストファイルの取得に失敗",
				slog.String("name", name), slog.Any("error", err))
			continue
		}
		f, ok := found.Get()
		if !ok {
			s.logger.Debug("コンテキストファイルが見つからない", slog.String("name", name))
			continue
		}
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		candidates = append(candidates, s.toCandidate(f, SourceContext))
	}

	// (2)(3) ベクトル検索とマージ
	ragFiles, err := s.searchByRequest(ctx, request, projectID)
	if err != nil {
		s.logger.Warn("ベクトル検索パスが失敗したため代替ファイルを返す", slog.Any("error", err))
		return s.withFallback(ctx, candidates, seen, projectID, degradedFallbackLimit)
	}

	// (4) プロジェクト内ゼロ件（未インデックスのプロジェクトなど）
	if len(ragFiles) == 0 {
		return s.withFallback(ctx, candidates, seen, projectID, fallbackLimit)
	}

	for _, f := range ragFiles {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		candidates = append(candidates, s.toCandidate(f, SourceRAG))
	}

	return candidates, nil
}

// searchByRequest はリクエスト文を埋め込み、スコア順のファイル行を返す
func (s *Service) searchByRequest(ctx context.Context, request string, projectID uuid.UUID) ([]*File, error) {
	vector, err := s.embedder.Embed(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to embed request: %w", err)
	}

	matches, err := s.vectors.Query(ctx, vector, vectorstore.QueryParams{
		TopK:      s.topK,
		ProjectID: projectID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		fileID, err := uuid.Parse(m.Metadata.FileID)
		if err != nil {
			s.logger.Warn("不正なfileIDメタデータを無視",
				slog.String("recordId", m.ID), slog.Any("error", err))
			continue
		}
		ids = append(ids, fileID)
	}

	files, err := s.files.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load matched files: %w", err)
	}

	// 検索スコア順を保つ
	byID := make(map[uuid.UUID]*File, len(files))
	for _, f := range files {
		byID[f.ID] = f
	}
	ordered := make([]*File, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			ordered = append(ordered, f)
		}
	}
	return ordered, nil
}

// withFallback はプロジェクト内のファイルを上限付きで候補に加える
func (s *Service) withFallback(ctx context.Context, candidates []CandidateFile, seen map[string]bool, projectID uuid.UUID, limit int) ([]CandidateFile, error) {
	files, err := s.files.ListByProject(ctx, projectID, limit)
	if err != nil {
		s.logger.Error("代替ファイルの取得に失敗", slog.Any("error", err))
		if len(candidates) == 0 {
			return nil, fmt.Errorf("failed to gather candidate files: %w", err)
		}
		return candidates, nil
	}

	for _, f := range files {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		candidates = append(candidates, s.toCandidate(f, SourceFallback))
	}
	return candidates, nil
}

func (s *Service) toCandidate(f *File, source Source) CandidateFile {
	contentType := f.ContentType
	if contentType == "" {
		contentType = s.detector.DetectContentType(f.Name, []byte(f.Content))
	}
	return CandidateFile{
		FileID:      f.ID,
		Name:        f.Name,
		Content:     f.Content,
		ContentType: contentType,
		Source:      source,
	}
}
