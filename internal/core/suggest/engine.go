package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"

	"github.com/jinford/editpilot/internal/core/discovery"
	"github.com/jinford/editpilot/internal/core/llm"
)

const (
	// minContentLength はLLMを呼ばずにスキップするファイル内容の下限
	minContentLength = 10

	// DefaultConcurrency はファイル単位の提案生成の並列数
	DefaultConcurrency = 4

	// DefaultTokenBudget は1ファイル分のプロンプトに許容するトークン数
	DefaultTokenBudget = 60000

	// contextWindow はChange.Contextに含める出現位置前後のバイト数
	contextWindow = 40

	// promptEncoding はトークン数計測に使うエンコーディング
	promptEncoding = "cl100k_base"
)

// proposedChange はLLMレスポンス中の置換候補1件（信頼できない入力として扱う）
type proposedChange struct {
	OldContent string `json:"oldContent"`
	NewContent string `json:"newContent"`
}

type suggestResponse struct {
	Changes []proposedChange `json:"changes"`
}

// Proposal は候補ファイル全体に対する差分提案の結果
type Proposal struct {
	// Changes は全ファイルの検証済み変更（入力ファイル順、ファイル内はLLM出力順）
	Changes []Change
	// FilesChanged は1件以上の変更が生成されたファイル
	FilesChanged []discovery.CandidateFile
	// Summary は件数のみから導出した人間向けの要約
	Summary string
}

// Engine はLLMの自由形式の編集提案を検証済みのChangeへ変換する
type Engine struct {
	client      llm.Client
	encoder     *tiktoken.Tiktoken
	concurrency int
	tokenBudget int
	logger      *slog.Logger
}

// EngineOption はEngineのオプション設定
type EngineOption func(*Engine)

// WithConcurrency はファイル単位の並列数を上書きする
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithTokenBudget はプロンプトのトークン上限を上書きする
func WithTokenBudget(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.tokenBudget = n
		}
	}
}

// WithEngineLogger はロガーを差し替える
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine は新しい差分提案エンジンを作成する
func NewEngine(client llm.Client, opts ...EngineOption) (*Engine, error) {
	if client == nil {
		panic("suggest.NewEngine: llm client is nil")
	}

	encoder, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load token encoder: %w", err)
	}

	e := &Engine{
		client:      client,
		encoder:     encoder,
		concurrency: DefaultConcurrency,
		tokenBudget: DefaultTokenBudget,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ProposeAll は候補ファイルごとに差分提案を生成して集約する。
//
// ファイル単位のLLM呼び出しは並列数上限つきで独立に実行され、
// 1ファイルの失敗はそのファイルの「変更なし」として扱う。
// 出力順は入力ファイル順で決定的。
func (e *Engine) ProposeAll(ctx context.Context, files []discovery.CandidateFile, request string) *Proposal {
	results := make([][]Change, len(files))

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)

	for i, file := range files {
		g.Go(func() error {
			changes, err := e.Synthesize(ctx, file, request)
			if err != nil {
				// 1ファイルの失敗でバッチ全体を中断しない
				e.logger.Warn("差分提案の生成に失敗（このファイルは変更なし扱い）",
					slog.String("file", file.Name), slog.Any("error", err))
				return nil
			}
			results[i] = changes
			return nil
		})
	}
	_ = g.Wait()

	proposal := &Proposal{}
	for i, file := range files {
		if len(results[i]) == 0 {
			continue
		}
		proposal.Changes = append(proposal.Changes, results[i]...)
		proposal.FilesChanged = append(proposal.FilesChanged, file)
	}

	proposal.Summary = fmt.Sprintf("%d件のファイルを確認し、%d件のファイルに対して%d件の変更候補を生成しました",
		len(files), len(proposal.FilesChanged), len(proposal.Changes))

	return proposal
}

// Synthesize は1ファイル分の差分提案を生成・検証する
func (e *Engine) Synthesize(ctx context.Context, file discovery.CandidateFile, request string) ([]Change, error) {
	// 内容が空か極端に短いファイルはLLMを呼ばずにスキップ
	if len(file.Content) < minContentLength {
		e.logger.Debug("内容が短すぎるためスキップ", slog.String("file", file.Name))
		return nil, nil
	}

	prompt := BuildSuggestPrompt(file, request)
	if tokens := len(e.encoder.Encode(prompt, nil, nil)); tokens > e.tokenBudget {
		e.logger.Warn("プロンプトがトークン上限を超えるためスキップ",
			slog.String("file", file.Name),
			slog.Int("tokens", tokens),
			slog.Int("budget", e.tokenBudget),
		)
		return nil, nil
	}

	resp, err := e.client.GenerateCompletion(ctx, llm.CompletionRequest{
		Prompt:         prompt,
		Temperature:    0,
		ResponseFormat: "json",
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed for %s: %w", file.Name, err)
	}

	var parsed suggestResponse
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return nil, fmt.Errorf("unexpected response shape for %s: %w", file.Name, err)
	}

	return e.validate(file, parsed.Changes), nil
}

// validate はLLMの提案をファイルの実内容と突き合わせ、検証済みのChangeだけを返す。
// 同一文字列の出現カウンタに依存するため、1ファイル内の処理は逐次で行う。
func (e *Engine) validate(file discovery.CandidateFile, proposals []proposedChange) []Change {
	changes := make([]Change, 0, len(proposals))
	claimed := make(map[string]int)

	for _, p := range proposals {
		if p.OldContent == "" {
			e.logger.Debug("oldContentが空のため棄却", slog.String("file", file.Name))
			continue
		}
		if p.OldContent == p.NewContent {
			e.logger.Debug("変更内容が同一のため棄却", slog.String("file", file.Name))
			continue
		}

		// LLMの「存在する」という主張は信用せず、必ず実内容で確認する
		offsets := findOccurrences(file.Content, p.OldContent)
		if len(offsets) == 0 {
			e.logger.Debug("oldContentがファイル内に存在しないため棄却",
				slog.String("file", file.Name))
			continue
		}

		// 出現位置の割り当て: 同一文字列への先行する変更が既に確保した
		// 出現をスキップし、次の未使用の出現を指す
		index := claimed[p.OldContent]
		if index >= len(offsets) {
			e.logger.Debug("出現回数を超える変更要求のため棄却（曖昧）",
				slog.String("file", file.Name),
				slog.Int("occurrences", len(offsets)),
			)
			continue
		}
		claimed[p.OldContent]++

		pair := Minimize(p.OldContent, p.NewContent)

		changes = append(changes, Change{
			ID:              uuid.New(),
			FileID:          file.FileID,
			FileName:        file.Name,
			OldContentFull:  p.OldContent,
			NewContentFull:  p.NewContent,
			OldContent:      pair.Old,
			NewContent:      pair.New,
			OccurrenceIndex: index,
			ReplacementType: ClassifyReplacement(pair.Old),
			Context:         occurrenceContext(file.Content, offsets[index], len(p.OldContent)),
		})
	}

	return changes
}

// occurrenceContext は対象の出現位置の前後を含む短い抜粋を返す。
// 窓の境界がマルチバイト文字の途中に落ちないよう、ルーン境界まで後退させる。
func occurrenceContext(content string, offset, length int) *string {
	start := offset - contextWindow
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}

	end := offset + length + contextWindow
	if end > len(content) {
		end = len(content)
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end--
	}

	snippet := content[start:end]
	return &snippet
}
