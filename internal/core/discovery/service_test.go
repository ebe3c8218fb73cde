package discovery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/editpilot/internal/core/vectorstore"
)

type stubFileReader struct {
	files       []*File
	listErr     error
	listLimits  []int
	byNameCalls []string
}

func (r *stubFileReader) GetByName(ctx context.Context, projectID uuid.UUID, name string) (mo.Option[*File], error) {
	r.byNameCalls = append(r.byNameCalls, name)
	for _, f := range r.files {
		if f.ProjectID == projectID && f.Name == name {
			return mo.Some(f), nil
		}
	}
	return mo.None[*File](), nil
}

func (r *stubFileReader) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*File, error) {
	var out []*File
	for _, id := range ids {
		for _, f := range r.files {
			if f.ID == id {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func (r *stubFileReader) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*File, error) {
	r.listLimits = append(r.listLimits, limit)
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*File
	for _, f := range r.files {
		if f.ProjectID != projectID {
			continue
		}
		out = append(out, f)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type stubEmbedder struct {
	vector []float32
	err    error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFile(projectID uuid.UUID, name, content string) *File {
	return &File{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		Content:   content,
	}
}

func indexFile(t *testing.T, store vectorstore.Store, f *File, values []float32) {
	t.Helper()
	err := store.Upsert(context.Background(), []vectorstore.Record{{
		ID:     vectorstore.RecordID(f.ID),
		Values: values,
		Metadata: vectorstore.Metadata{
			ProjectID: f.ProjectID.String(),
			FileID:    f.ID.String(),
			FileName:  f.Name,
		},
	}})
	require.NoError(t, err)
}

func TestDiscover_ContextWinsOverRAG(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()

	main := newTestFile(projectID, "main.go", "package main")
	util := newTestFile(projectID, "util.go", "package util")
	reader := &stubFileReader{files: []*File{main, util}}

	store := vectorstore.NewMemoryStore()
	indexFile(t, store, main, []float32{1, 0})
	indexFile(t, store, util, []float32{0.9, 0.1})

	svc := NewService(reader, store, &stubEmbedder{vector: []float32{1, 0}}, WithLogger(testLogger()))

	candidates, err := svc.Discover(ctx, "rename the helper", []string{"main.go"}, projectID)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// main.go はコンテキスト経由で1回だけ含まれる
	assert.Equal(t, "main.go", candidates[0].Name)
	assert.Equal(t, SourceContext, candidates[0].Source)
	assert.Equal(t, "util.go", candidates[1].Name)
	assert.Equal(t, SourceRAG, candidates[1].Source)
}

func TestDiscover_FallbackWhenProjectNotIndexed(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()

	var files []*File
	for _, name := range []string{"a.go", "b.go", "c.go", "d.go", "e.go", "f.go"} {
		files = append(files, newTestFile(projectID, name, "content of "+name))
	}
	reader := &stubFileReader{files: files}

	// ストアは空（未インデックスのプロジェクト）
	store := vectorstore.NewMemoryStore()
	svc := NewService(reader, store, &stubEmbedder{vector: []float32{1}}, WithLogger(testLogger()))

	candidates, err := svc.Discover(ctx, "anything", nil, projectID)
	require.NoError(t, err)
	require.Len(t, candidates, 5) // 上限5件

	for _, c := range candidates {
		assert.Equal(t, SourceFallback, c.Source)
	}
}

func TestDiscover_DegradedFallbackOnEmbedError(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()

	var files []*File
	for _, name := range []string{"a.go", "b.go", "c.go", "d.go"} {
		files = append(files, newTestFile(projectID, name, "content"))
	}
	reader := &stubFileReader{files: files}

	store := vectorstore.NewMemoryStore()
	svc := NewService(reader, store, &stubEmbedder{err: errors.New("embedding service down")}, WithLogger(testLogger()))

	candidates, err := svc.Discover(ctx, "anything", nil, projectID)
	require.NoError(t, err)

	// 失敗時の上限は縮小される
	require.Len(t, candidates, 3)
	require.NotEmpty(t, reader.listLimits)
	assert.Equal(t, 3, reader.listLimits[0])
}

func TestDiscover_ErrorOnlyWhenNothingGathered(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()

	reader := &stubFileReader{listErr: errors.New("db down")}
	store := vectorstore.NewMemoryStore()
	svc := NewService(reader, store, &stubEmbedder{vector: []float32{1}}, WithLogger(testLogger()))

	_, err := svc.Discover(ctx, "anything", nil, projectID)
	assert.Error(t, err)
}

func TestDiscover_FillsMissingContentType(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()

	f := newTestFile(projectID, "main.go", "package main\n\nfunc main() {}\n")
	reader := &stubFileReader{files: []*File{f}}

	store := vectorstore.NewMemoryStore()
	indexFile(t, store, f, []float32{1})

	svc := NewService(reader, store, &stubEmbedder{vector: []float32{1}}, WithLogger(testLogger()))

	candidates, err := svc.Discover(ctx, "anything", nil, projectID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "text/x-go", candidates[0].ContentType)
}
