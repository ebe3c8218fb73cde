package vectorstore

import (
	"context"
	"log/slog"
	"sync"
)

// FailureThreshold は永続バックエンドを切り離すまでの連続失敗回数
const FailureThreshold = 3

// breakerState はサーキットブレーカーの状態
type breakerState int

const (
	// breakerClosed は通常状態（永続バックエンドを試行する）
	breakerClosed breakerState = iota
	// breakerOpen は遮断状態（プロセスの生存期間中は復帰しない）
	breakerOpen
)

// ResilientStore は永続バックエンドとプロセス内フォールバックを
// 1つのStoreとして束ねるラッパー。
//
// 永続バックエンドの呼び出しが失敗するたびにカウンタを進め、
// FailureThresholdに達した時点で遮断状態へ遷移する。遮断後は
// ネットワーク試行を省略し、全呼び出しをフォールバックへ直行させる。
// 遮断前の成功はカウンタを0に戻すが、一度開いたブレーカーは閉じない。
//
// ストア障害はこの層で吸収され、呼び出し側には漏れない。
type ResilientStore struct {
	durable  Store
	fallback Store
	logger   *slog.Logger

	mu       sync.Mutex
	state    breakerState
	failures int
}

// ResilientOption はResilientStoreのオプション設定
type ResilientOption func(*ResilientStore)

// WithResilientLogger はロガーを差し替える
func WithResilientLogger(logger *slog.Logger) ResilientOption {
	return func(s *ResilientStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewResilientStore は永続バックエンドとフォールバックからResilientStoreを作成する
func NewResilientStore(durable, fallback Store, opts ...ResilientOption) *ResilientStore {
	if fallback == nil {
		panic("vectorstore.NewResilientStore: fallback is nil")
	}

	s := &ResilientStore{
		durable:  durable,
		fallback: fallback,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Store = (*ResilientStore)(nil)

// Upsert は永続バックエンドへ登録し、フォールバックにも複製する。
// フォールバックへの複製はフェイルオーバー時に手元のデータを空にしないための
// ベストエフォートであり、失敗しても呼び出しは成功扱いとなる。
func (s *ResilientStore) Upsert(ctx context.Context, records []Record) error {
	// フォールバックには常に書き込む（MemoryStoreはエラーを返さない）
	if err := s.fallback.Upsert(ctx, records); err != nil {
		s.logger.Warn("フォールバックストアへの複製に失敗", slog.Any("error", err))
	}

	if s.tripped() {
		return nil
	}

	if err := s.durable.Upsert(ctx, records); err != nil {
		s.recordFailure("upsert", err)
		return nil
	}

	s.recordSuccess()
	return nil
}

// Delete は永続バックエンドとフォールバックの両方から削除する
func (s *ResilientStore) Delete(ctx context.Context, ids []string) error {
	if err := s.fallback.Delete(ctx, ids); err != nil {
		s.logger.Warn("フォールバックストアからの削除に失敗", slog.Any("error", err))
	}

	if s.tripped() {
		return nil
	}

	if err := s.durable.Delete(ctx, ids); err != nil {
		s.recordFailure("delete", err)
		return nil
	}

	s.recordSuccess()
	return nil
}

// Query は永続バックエンドを先に試行し、失敗時はフォールバックで再実行する
func (s *ResilientStore) Query(ctx context.Context, vector []float32, params QueryParams) ([]Match, error) {
	if s.tripped() {
		return s.fallback.Query(ctx, vector, params)
	}

	matches, err := s.durable.Query(ctx, vector, params)
	if err != nil {
		s.recordFailure("query", err)
		return s.fallback.Query(ctx, vector, params)
	}

	s.recordSuccess()
	return matches, nil
}

// Tripped はブレーカーが遮断状態かどうかを返す
func (s *ResilientStore) Tripped() bool {
	return s.tripped()
}

func (s *ResilientStore) tripped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == breakerOpen
}

func (s *ResilientStore) recordFailure(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == breakerOpen {
		return
	}

	s.failures++
	s.logger.Warn("永続ベクトルストアの呼び出しに失敗",
		slog.String("op", op),
		slog.Int("failures", s.failures),
		slog.Any("error", err),
	)

	if s.failures >= FailureThreshold {
		s.state = breakerOpen
		s.logger.Error("永続ベクトルストアを切り離しました（以後はフォールバックのみ使用）",
			slog.Int("threshold", FailureThreshold),
		)
	}
}

func (s *ResilientStore) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 遮断はプロセス生存期間中は終端状態
	if s.state == breakerOpen {
		return
	}
	s.failures = 0
}
