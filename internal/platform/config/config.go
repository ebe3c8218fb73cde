package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// ErrAPIKeyMissing はOpenAI APIキーが未設定の場合のエラー
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY is not set")
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// OpenAI設定（Embeddings + LLM）
	OpenAI OpenAIConfig

	// HTTPサーバ設定
	Server ServerConfig

	// 検索・提案パイプライン設定
	Pipeline PipelineConfig

	// ログ設定
	LogLevel  string
	LogFormat string
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OpenAIConfig はOpenAI API設定
type OpenAIConfig struct {
	APIKey             string
	EmbeddingModel     string
	EmbeddingDimension int
	CompletionModel    string
}

// ServerConfig はHTTPサーバ設定
type ServerConfig struct {
	Port int
}

// PipelineConfig は検索・提案パイプラインのチューニング設定
type PipelineConfig struct {
	// SearchTopK はベクトル検索で取得する件数
	SearchTopK int
	// SuggestConcurrency はファイル単位の提案生成の並列数
	SuggestConcurrency int
	// PromptTokenBudget は1ファイル分のプロンプトに許容するトークン数
	PromptTokenBudget int
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "editpilot"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "editpilot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
			CompletionModel:    getEnv("OPENAI_COMPLETION_MODEL", "gpt-4o-mini"),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Pipeline: PipelineConfig{
			SearchTopK:         getEnvAsInt("PIPELINE_SEARCH_TOP_K", 5),
			SuggestConcurrency: getEnvAsInt("PIPELINE_SUGGEST_CONCURRENCY", 4),
			PromptTokenBudget:  getEnvAsInt("PIPELINE_PROMPT_TOKEN_BUDGET", 60000),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	return cfg, nil
}

// Validate は必須設定の存在を検証します（欠落は起動時エラー）
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return ErrAPIKeyMissing
	}
	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
