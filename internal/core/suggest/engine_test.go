package suggest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/editpilot/internal/core/discovery"
	"github.com/jinford/editpilot/internal/core/llm"
)

// stubClient はファイル名をキーに固定レスポンスを返すLLMスタブ
type stubClient struct {
	responses map[string]string
	errors    map[string]error
	calls     int
}

func (c *stubClient) GenerateCompletion(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	c.calls++
	for key, err := range c.errors {
		if strings.Contains(req.Prompt, key) {
			return llm.CompletionResponse{}, err
		}
	}
	for key, content := range c.responses {
		if strings.Contains(req.Prompt, key) {
			return llm.CompletionResponse{Content: content}, nil
		}
	}
	return llm.CompletionResponse{Content: `{"changes": []}`}, nil
}

func newTestEngine(t *testing.T, client llm.Client, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append(opts, WithEngineLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	engine, err := NewEngine(client, opts...)
	require.NoError(t, err)
	return engine
}

func candidate(name, content string) discovery.CandidateFile {
	return discovery.CandidateFile{
		FileID:  uuid.New(),
		Name:    name,
		Content: content,
		Source:  discovery.SourceContext,
	}
}

func TestSynthesize_EndToEndScenario(t *testing.T) {
	client := &stubClient{responses: map[string]string{
		"vars.ts": `{"changes": [{"oldContent": "const x = 1;", "newContent": "const x = 10;"}]}`,
	}}
	engine := newTestEngine(t, client)

	file := candidate("vars.ts", "const x = 1;\nconst y = 2;")

	changes, err := engine.Synthesize(context.Background(), file, "xを10にして")
	require.NoError(t, err)
	require.Len(t, changes, 1)

	ch := changes[0]
	assert.Equal(t, "const x = 1;", ch.OldContentFull)
	assert.Equal(t, "const x = 10;", ch.NewContentFull)
	assert.Equal(t, "1;", ch.OldContent)
	assert.Equal(t, "10;", ch.NewContent)
	assert.Equal(t, 0, ch.OccurrenceIndex)
	assert.Equal(t, ReplacementWord, ch.ReplacementType)
	assert.Equal(t, file.FileID, ch.FileID)
}

func TestSynthesize_OccurrenceDisambiguation(t *testing.T) {
	// "foo" を3回含むファイルに対して同一の変更を4回提案する
	proposal := `{"changes": [
		{"oldContent": "foo", "newContent": "bar1"},
		{"oldContent": "foo", "newContent": "bar2"},
		{"oldContent": "foo", "newContent": "bar3"},
		{"oldContent": "foo", "newContent": "bar4"}
	]}`
	client := &stubClient{responses: map[string]string{"repeat.txt": proposal}}
	engine := newTestEngine(t, client)

	file := candidate("repeat.txt", "foo and foo and foo")

	changes, err := engine.Synthesize(context.Background(), file, "rename foo")
	require.NoError(t, err)

	// 出現は3回しかないため4件目は曖昧として棄却される
	require.Len(t, changes, 3)
	assert.Equal(t, 0, changes[0].OccurrenceIndex)
	assert.Equal(t, 1, changes[1].OccurrenceIndex)
	assert.Equal(t, 2, changes[2].OccurrenceIndex)
}

func TestSynthesize_RejectsTextNotInFile(t *testing.T) {
	proposal := `{"changes": [
		{"oldContent": "does not exist anywhere", "newContent": "replacement"},
		{"oldContent": "", "newContent": "something"},
		{"oldContent": "real content here", "newContent": "real content here"}
	]}`
	client := &stubClient{responses: map[string]string{"doc.md": proposal}}
	engine := newTestEngine(t, client)

	file := candidate("doc.md", "real content here")

	changes, err := engine.Synthesize(context.Background(), file, "edit")
	require.NoError(t, err)

	// 存在しないテキスト・空のoldContent・無変更はすべて棄却される
	assert.Empty(t, changes)
}

func TestSynthesize_ContextSnippetStaysOnRuneBoundaries(t *testing.T) {
	proposal := `{"changes": [{"oldContent": "TARGET", "newContent": "CHANGED"}]}`
	client := &stubClient{responses: map[string]string{"ja.md": proposal}}
	engine := newTestEngine(t, client)

	// 前後をマルチバイト文字で埋め、抜粋窓の両端が3バイト文字の途中に落ちる配置にする
	content := strings.Repeat("あ", 30) + "TARGET" + strings.Repeat("い", 30)
	file := candidate("ja.md", content)

	changes, err := engine.Synthesize(context.Background(), file, "edit")
	require.NoError(t, err)
	require.Len(t, changes, 1)

	require.NotNil(t, changes[0].Context)
	assert.True(t, utf8.ValidString(*changes[0].Context))
	assert.Contains(t, *changes[0].Context, "TARGET")
}

func TestSynthesize_SkipsTrivialContentWithoutLLMCall(t *testing.T) {
	client := &stubClient{}
	engine := newTestEngine(t, client)

	changes, err := engine.Synthesize(context.Background(), candidate("tiny.txt", "short"), "edit")
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.Equal(t, 0, client.calls)
}

func TestSynthesize_SkipsOverBudgetPrompt(t *testing.T) {
	client := &stubClient{}
	engine := newTestEngine(t, client, WithTokenBudget(1))

	changes, err := engine.Synthesize(context.Background(), candidate("big.txt", strings.Repeat("content ", 50)), "edit")
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.Equal(t, 0, client.calls)
}

func TestProposeAll_PerFileFailureDoesNotAbortBatch(t *testing.T) {
	client := &stubClient{
		responses: map[string]string{
			"good.go": `{"changes": [{"oldContent": "package good", "newContent": "package better"}]}`,
			"none.go": `{"changes": []}`,
		},
		errors: map[string]error{
			"bad.go": errors.New("completion timeout"),
		},
	}
	engine := newTestEngine(t, client, WithConcurrency(2))

	files := []discovery.CandidateFile{
		candidate("good.go", "package good\n\nfunc F() {}\n"),
		candidate("bad.go", "package bad\n\nfunc G() {}\n"),
		candidate("none.go", "package none\n\nfunc H() {}\n"),
	}

	proposal := engine.ProposeAll(context.Background(), files, "rename packages")

	require.Len(t, proposal.Changes, 1)
	assert.Equal(t, "good.go", proposal.Changes[0].FileName)

	// 変更が生成されなかったファイルは開くべきファイル一覧から外れる
	require.Len(t, proposal.FilesChanged, 1)
	assert.Equal(t, "good.go", proposal.FilesChanged[0].Name)

	assert.Contains(t, proposal.Summary, "3件のファイル")
	assert.Contains(t, proposal.Summary, "1件の変更候補")
}

func TestProposeAll_DeterministicOrder(t *testing.T) {
	client := &stubClient{responses: map[string]string{
		"a.go": `{"changes": [{"oldContent": "alpha one", "newContent": "alpha two"}]}`,
		"b.go": `{"changes": [{"oldContent": "beta one", "newContent": "beta two"}]}`,
	}}
	engine := newTestEngine(t, client, WithConcurrency(2))

	files := []discovery.CandidateFile{
		candidate("a.go", "alpha one is here"),
		candidate("b.go", "beta one is here"),
	}

	// 並列実行でも出力は入力ファイル順
	for i := 0; i < 5; i++ {
		proposal := engine.ProposeAll(context.Background(), files, "bump versions")
		require.Len(t, proposal.Changes, 2)
		assert.Equal(t, "a.go", proposal.Changes[0].FileName)
		assert.Equal(t, "b.go", proposal.Changes[1].FileName)
	}
}
