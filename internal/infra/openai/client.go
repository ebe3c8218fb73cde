package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	corellm "github.com/jinford/editpilot/internal/core/llm"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultCompletionModel はデフォルトで使用するOpenAIモデル
	DefaultCompletionModel = "gpt-4o-mini"

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 60 * time.Second

	// MaxRetries はレート制限エラー時の最大リトライ回数
	MaxRetries = 3

	// BaseBackoff はExponential Backoffの基底時間
	BaseBackoff = 2 * time.Second

	// MaxBackoff はExponential Backoffの最大待機時間
	MaxBackoff = 32 * time.Second

	// JSONParseMaxRetries はJSON解析エラー時の最大リトライ回数
	JSONParseMaxRetries = 1
)

var (
	// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
	ErrAPIKeyNotSet = errors.New("OpenAI API key not set")
)

// Client は OpenAI API を使用した corellm.Client の実装
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewClient はAPIキーとモデルを指定してClientを作成する
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	if model == "" {
		model = DefaultCompletionModel
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &Client{
		client:  client,
		model:   model,
		timeout: DefaultTimeout,
	}, nil
}

// SetTimeout はAPIコールのタイムアウトを設定する
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// ModelName はデフォルトのモデル名を返す
func (c *Client) ModelName() string {
	return c.model
}

// GenerateCompletion はOpenAI APIを使用してテキストを生成する
func (c *Client) GenerateCompletion(ctx context.Context, req corellm.CompletionRequest) (corellm.CompletionResponse, error) {
	// タイムアウト付きコンテキストの作成
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	var jsonParseRetries int
	for {
		// レート制限エラー用のリトライループ
		resp, err := c.generateWithRetry(ctx, model, req)
		if err != nil {
			return corellm.CompletionResponse{}, err
		}

		// JSON形式が要求されている場合は妥当性を検証
		if req.ResponseFormat == "json" {
			if !isValidJSON(resp.Content) {
				jsonParseRetries++
				if jsonParseRetries > JSONParseMaxRetries {
					return corellm.CompletionResponse{}, fmt.Errorf("JSON parse failed after %d retries", JSONParseMaxRetries)
				}
				// JSON解析に失敗した場合は再試行
				continue
			}
		}

		return resp, nil
	}
}

// generateWithRetry はレート制限エラー時にExponential Backoffでリトライする
func (c *Client) generateWithRetry(ctx context.Context, model string, req corellm.CompletionRequest) (corellm.CompletionResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential Backoff
			backoffDuration := time.Duration(math.Pow(2, float64(attempt-1))) * BaseBackoff
			if backoffDuration > MaxBackoff {
				backoffDuration = MaxBackoff
			}

			select {
			case <-ctx.Done():
				return corellm.CompletionResponse{}, ctx.Err()
			case <-time.After(backoffDuration):
				// バックオフ後、再試行
			}
		}

		// ChatCompletion APIパラメータの構築
		params := openai.ChatCompletionNewParams{
			Model: shared.ChatModel(model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(req.Prompt),
			},
			Temperature: openai.Float(req.Temperature),
		}

		if req.MaxTokens > 0 {
			params.MaxTokens = openai.Int(int64(req.MaxTokens))
		}

		// JSON形式が要求された場合
		if req.ResponseFormat == "json" {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{
					Type: "json_object",
				},
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err

			// レート制限エラーはリトライ対象
			if isRateLimitError(err) {
				continue
			}

			// その他のエラーは即座に返す
			return corellm.CompletionResponse{}, fmt.Errorf("OpenAI API call failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return corellm.CompletionResponse{}, corellm.ErrEmptyResponse
		}

		return corellm.CompletionResponse{
			Content:    completion.Choices[0].Message.Content,
			TokensUsed: int(completion.Usage.TotalTokens),
			Model:      string(completion.Model),
		}, nil
	}

	// 最大リトライ回数を超過
	return corellm.CompletionResponse{}, fmt.Errorf("%w: %v", corellm.ErrMaxRetriesExceeded, lastErr)
}

// isRateLimitError はエラーがレート制限エラーかどうかを判定する
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		// ステータスコード429はレート制限エラー
		return apiErr.StatusCode == 429
	}

	return false
}

// isValidJSON は文字列が有効なJSONかどうかを判定する
func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}

// インターフェース実装の確認
var _ corellm.Client = (*Client)(nil)
