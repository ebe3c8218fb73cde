package discovery

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Source は候補ファイルの取得経路を表す（デバッグ用途のみで、順位付けには使わない）
type Source string

const (
	// SourceContext は呼び出し側が明示的に指定したファイル
	SourceContext Source = "context"
	// SourceRAG はベクトル検索でヒットしたファイル
	SourceRAG Source = "rag"
	// SourceFallback は検索不能時に返すプロジェクト内ファイル
	SourceFallback Source = "fallback"
)

// File はプロジェクト配下のファイル行（リレーショナルストアの読み取り結果）
type File struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Name        string
	Content     string
	ContentType string
}

// CandidateFile は1リクエスト分の編集・回答候補ファイル
type CandidateFile struct {
	FileID      uuid.UUID `json:"fileId"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	ContentType string    `json:"type"`
	Source      Source    `json:"source"`
}

// FileReader はファイルストアの読み取り専用ポート。
// このシステムはファイル行を書き込まない（書き込みは呼び出し側アプリケーションの責務）。
type FileReader interface {
	// GetByName はプロジェクト内のファイルを名前で検索する
	GetByName(ctx context.Context, projectID uuid.UUID, name string) (mo.Option[*File], error)

	// ListByIDs はIDリストに対応するファイル行を返す（見つからないIDは無視）
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*File, error)

	// ListByProject はプロジェクト内のファイル行を返す（limit 0は無制限）
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*File, error)
}
