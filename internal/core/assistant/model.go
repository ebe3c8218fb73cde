package assistant

import (
	"errors"

	"github.com/google/uuid"

	"github.com/jinford/editpilot/internal/core/discovery"
	"github.com/jinford/editpilot/internal/core/suggest"
)

// Intent はユーザーリクエストの分類結果（リクエストごとに生成され、永続化されない）
type Intent string

const (
	// IntentEdit はファイルへの変更を求めるリクエスト
	IntentEdit Intent = "edit"
	// IntentRetrieval はコンテキスト外のプロジェクト全体に関する質問
	IntentRetrieval Intent = "retrieval"
	// IntentStandard は一般的な質問・会話で完結するリクエスト
	IntentStandard Intent = "standard"
)

var (
	// ErrEmptyRequest はリクエスト本文が空の場合のエラー
	ErrEmptyRequest = errors.New("request text is empty")

	// ErrNoCandidateFiles は編集対象の候補ファイルが1件も得られなかった場合のエラー
	ErrNoCandidateFiles = errors.New("no candidate files found for this project")
)

// Message は会話履歴の1発話
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request はアシスタントへの1リクエスト
type Request struct {
	// Text はユーザーの自由記述リクエスト
	Text string
	// ContextFiles は呼び出し側が明示したファイル名
	ContextFiles []string
	// ProjectID は対象プロジェクト
	ProjectID uuid.UUID
	// History は会話履歴（standardパスでのみ使用）
	History []Message
}

// Response はアシスタントの応答。
// Suggestions が存在するのはeditに分類されたリクエストのみで、
// 無い場合は文章で回答されたことを意味する。
type Response struct {
	Result      string                    `json:"result"`
	Suggestions []suggest.Change          `json:"suggestions,omitempty"`
	FilesToOpen []discovery.CandidateFile `json:"filesToOpen,omitempty"`
}
