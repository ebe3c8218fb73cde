package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jinford/editpilot/internal/core/llm"
)

// fixedClient は常に同じ内容（またはエラー）を返すLLMスタブ
type fixedClient struct {
	content string
	err     error
	calls   int
	lastReq llm.CompletionRequest
}

func (c *fixedClient) GenerateCompletion(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return llm.CompletionResponse{}, c.err
	}
	return llm.CompletionResponse{Content: c.content}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouter_Classify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Intent
	}{
		{name: "editラベル", response: "edit", want: IntentEdit},
		{name: "retrievalラベル", response: "retrieval", want: IntentRetrieval},
		{name: "standardラベル", response: "standard", want: IntentStandard},
		{name: "大文字や前後空白は正規化される", response: "  Edit\n", want: IntentEdit},
		{name: "引用符つきラベルも受理する", response: `"retrieval"`, want: IntentRetrieval},
		{name: "未知のラベルはstandard", response: "refactor", want: IntentStandard},
		{name: "空レスポンスはstandard", response: "", want: IntentStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&fixedClient{content: tt.response}, WithRouterLogger(testLogger()))

			got := router.Classify(context.Background(), "テキストを修正して", false)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouter_Classify_FallsBackToStandardOnError(t *testing.T) {
	client := &fixedClient{err: errors.New("api unavailable")}
	router := NewRouter(client, WithRouterLogger(testLogger()))

	got := router.Classify(context.Background(), "この関数を直して", true)

	// 分類不能のときは編集パイプラインを走らせない
	assert.Equal(t, IntentStandard, got)
	assert.Equal(t, 1, client.calls)
}

func TestRouter_Classify_UsesDeterministicSettings(t *testing.T) {
	client := &fixedClient{content: "edit"}
	router := NewRouter(client, WithRouterLogger(testLogger()))

	router.Classify(context.Background(), "関数名を変えて", true)

	assert.Equal(t, 0.0, client.lastReq.Temperature)
	assert.Contains(t, client.lastReq.Prompt, "関数名を変えて")
	assert.Contains(t, client.lastReq.Prompt, "対象ファイルを明示的に指定しています")
}
