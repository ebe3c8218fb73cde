package assistant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jinford/editpilot/internal/core/llm"
)

const (
	// classifyTemperature は分類の再現性を優先するため0に固定する
	classifyTemperature = 0.0
	classifyMaxTokens   = 8
)

// Router はLLMを用いてユーザーリクエストの意図を分類するルーター
type Router struct {
	client llm.Client
	logger *slog.Logger
}

// NewRouter はRouterを生成する
func NewRouter(client llm.Client, opts ...RouterOption) *Router {
	r := &Router{
		client: client,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RouterOption はRouterの設定オプション
type RouterOption func(*Router)

// WithRouterLogger はロガーを設定する
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// Classify はリクエストテキストの意図を判定する。
// 分類に失敗した場合や未知のラベルが返った場合は IntentStandard にフォールバックする。
// 誤分類で編集パイプラインが走るより、通常回答に倒す方が安全なため。
func (r *Router) Classify(ctx context.Context, text string, hasFileContext bool) Intent {
	prompt := BuildClassifyPrompt(text, hasFileContext)

	resp, err := r.client.GenerateCompletion(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		Temperature: classifyTemperature,
		MaxTokens:   classifyMaxTokens,
	})
	if err != nil {
		r.logger.Warn("意図分類に失敗したため standard にフォールバックします", slog.String("error", err.Error()))
		return IntentStandard
	}

	label := strings.ToLower(strings.TrimSpace(resp.Content))
	label = strings.Trim(label, `"'.`)

	switch Intent(label) {
	case IntentEdit:
		return IntentEdit
	case IntentRetrieval:
		return IntentRetrieval
	case IntentStandard:
		return IntentStandard
	default:
		r.logger.Warn("未知の分類ラベルを受信しました", slog.String("label", label))
		return IntentStandard
	}
}
