package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/editpilot/internal/core/vectorstore"
)

// minOverfetch はプロジェクトフィルタ前に取得する最低件数
const minOverfetch = 10

// VectorRepository はpgvectorを永続バックエンドとするvectorstore.Storeの実装。
//
// バックエンド側の検索はメタデータを条件にしない純粋なtop-Kであるため、
// プロジェクトによる絞り込みは取得後にこちらで行う。絞り込みで件数が
// 減ることを見越して 3*K（最低10件）を先に取得する。
type VectorRepository struct {
	pool *pgxpool.Pool
}

// NewVectorRepository は新しいVectorRepositoryを作成します
func NewVectorRepository(pool *pgxpool.Pool) *VectorRepository {
	return &VectorRepository{pool: pool}
}

var _ vectorstore.Store = (*VectorRepository)(nil)

// Upsert はレコードをIDで上書き登録します（再実行しても結果は同じ）
func (r *VectorRepository) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO file_embeddings (id, project_id, file_id, file_name, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			project_id = EXCLUDED.project_id,
			file_id = EXCLUDED.file_id,
			file_name = EXCLUDED.file_name,
			embedding = EXCLUDED.embedding
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query,
			rec.ID,
			rec.Metadata.ProjectID,
			rec.Metadata.FileID,
			rec.Metadata.FileName,
			pgvector.NewVector(rec.Values),
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert embedding record: %w", err)
		}
	}

	return nil
}

// Delete は指定IDのレコードを削除します（存在しないIDは無視）
func (r *VectorRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM file_embeddings WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to delete embedding records: %w", err)
	}
	return nil
}

// Query はコサイン類似度の上位を返します。
// スコアは 1 - コサイン距離（= コサイン類似度）。
func (r *VectorRepository) Query(ctx context.Context, vector []float32, params vectorstore.QueryParams) ([]vectorstore.Match, error) {
	topK := params.TopK
	if topK <= 0 {
		topK = minOverfetch
	}

	// プロジェクトフィルタ前のオーバーフェッチ
	fetch := 3 * topK
	if fetch < minOverfetch {
		fetch = minOverfetch
	}

	query := `
		SELECT id, project_id, file_id, file_name,
		       1 - (embedding <=> $1) AS score
		FROM file_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(vector), fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	projectID := params.ProjectID.String()

	matches := make([]vectorstore.Match, 0, topK)
	for rows.Next() {
		var m vectorstore.Match
		if err := rows.Scan(&m.ID, &m.Metadata.ProjectID, &m.Metadata.FileID, &m.Metadata.FileName, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan embedding row: %w", err)
		}
		if m.Metadata.ProjectID != projectID {
			continue
		}
		matches = append(matches, m)
		if len(matches) >= topK {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embedding rows: %w", err)
	}

	return matches, nil
}
