package llm

import "context"

// CompletionRequest はLLMへの単一のテキスト生成リクエスト
type CompletionRequest struct {
	// Prompt はユーザープロンプト全文
	Prompt string
	// Model はモデル名（空の場合はクライアントのデフォルト）
	Model string
	// Temperature は生成のランダム性（分類・差分提案は0で固定）
	Temperature float64
	// MaxTokens は生成トークン数の上限（0は無制限）
	MaxTokens int
	// ResponseFormat は "json" を指定するとJSONオブジェクトを強制する
	ResponseFormat string
}

// CompletionResponse はLLMからのレスポンス
type CompletionResponse struct {
	// Content は生成されたテキスト
	Content string
	// TokensUsed は消費した合計トークン数
	TokensUsed int
	// Model は実際に使用されたモデル名
	Model string
}

// Client はLLM通信のポート
type Client interface {
	// GenerateCompletion はプロンプトからテキストを生成する
	GenerateCompletion(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// Embedder はテキストをベクトル表現に変換するポート
type Embedder interface {
	// Embed はテキストからEmbeddingベクトルを生成する
	Embed(ctx context.Context, text string) ([]float32, error)

	// BatchEmbed は複数テキストのEmbeddingをまとめて生成する
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension はEmbeddingベクトルの次元数を返す
	Dimension() int
}
