package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/mo"

	"github.com/jinford/editpilot/internal/core/discovery"
)

// FileRepository はファイルストアの読み取り専用アダプター。
// ファイル行の作成・更新・削除は呼び出し側アプリケーションが所有する。
type FileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository は新しいFileRepositoryを作成します
func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

var _ discovery.FileReader = (*FileRepository)(nil)

// GetByName はプロジェクト内のファイルを名前で取得します
func (r *FileRepository) GetByName(ctx context.Context, projectID uuid.UUID, name string) (mo.Option[*discovery.File], error) {
	query := `
		SELECT id, project_id, name, content, content_type
		FROM files
		WHERE project_id = $1 AND name = $2
	`

	var f discovery.File
	err := r.pool.QueryRow(ctx, query, projectID, name).Scan(
		&f.ID,
		&f.ProjectID,
		&f.Name,
		&f.Content,
		&f.ContentType,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mo.None[*discovery.File](), nil
		}
		return mo.None[*discovery.File](), fmt.Errorf("failed to get file by name: %w", err)
	}

	return mo.Some(&f), nil
}

// ListByIDs はIDリストに対応するファイル行を取得します
func (r *FileRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*discovery.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, project_id, name, content, content_type
		FROM files
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list files by ids: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

// ListByProject はプロジェクト内のファイル行を取得します（limit 0は無制限）
func (r *FileRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*discovery.File, error) {
	query := `
		SELECT id, project_id, name, content, content_type
		FROM files
		WHERE project_id = $1
		ORDER BY name
	`
	args := []any{projectID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files by project: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

func scanFiles(rows pgx.Rows) ([]*discovery.File, error) {
	var files []*discovery.File
	for rows.Next() {
		var f discovery.File
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Content, &f.ContentType); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file rows: %w", err)
	}
	return files, nil
}
