package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RecordIDPrefix はファイル単位のEmbeddingレコードIDの接頭辞。
// fileIDから決定的に導出されるため、再インデックスは重複ではなく上書きになる。
const RecordIDPrefix = "file-"

// Metadata はEmbeddingレコードに付随するファイル情報
type Metadata struct {
	ProjectID string `json:"projectId"`
	FileID    string `json:"fileId"`
	FileName  string `json:"fileName"`
}

// Record はインデックス済みファイル1件分のEmbeddingレコード
type Record struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Match は類似度検索の結果1件（リクエストごとに生成され、永続化されない）
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// QueryParams は類似度検索のパラメータ
type QueryParams struct {
	TopK      int
	ProjectID uuid.UUID
}

// Store はベクトル類似度検索バックエンドのポート。
// 全操作はリトライに対して冪等であること。
type Store interface {
	// Upsert はレコードを登録または上書きする
	Upsert(ctx context.Context, records []Record) error

	// Delete は指定IDのレコードを削除する（存在しないIDは無視）
	Delete(ctx context.Context, ids []string) error

	// Query はクエリベクトルとの類似度上位を返す
	Query(ctx context.Context, vector []float32, params QueryParams) ([]Match, error)
}

// RecordID はfileIDからレコードIDを導出する
func RecordID(fileID uuid.UUID) string {
	return fmt.Sprintf("%s%s", RecordIDPrefix, fileID)
}
