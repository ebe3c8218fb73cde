package assistant

import (
	"fmt"
	"strings"

	"github.com/jinford/editpilot/internal/core/discovery"
)

// BuildClassifyPrompt はリクエスト分類用のプロンプトを構築する。
// レスポンスは edit / retrieval / standard のいずれか1語に固定する。
func BuildClassifyPrompt(text string, hasFileContext bool) string {
	var sb strings.Builder

	sb.WriteString("あなたはリクエストの分類器です。次のユーザーリクエストを1つのラベルに分類してください。\n\n")

	sb.WriteString("## ラベルの判定基準\n")
	sb.WriteString("- edit: ファイルの内容を変更・修正・追記・削除・リネームするよう求めている\n")
	sb.WriteString("- standard: 一般的な質問、または与えられたコンテキストだけで回答できる質問\n")
	sb.WriteString("- retrieval: 与えられたコンテキストを超えて、プロジェクト全体のコードや文書を参照しないと回答できない質問\n\n")

	if hasFileContext {
		sb.WriteString("ユーザーは対象ファイルを明示的に指定しています。\n\n")
	} else {
		sb.WriteString("ユーザーは対象ファイルを指定していません。\n\n")
	}

	sb.WriteString("## ユーザーリクエスト\n")
	sb.WriteString(text)
	sb.WriteString("\n\n")

	sb.WriteString("ラベル（edit / retrieval / standard のいずれか1語のみ）を出力してください。\n")

	return sb.String()
}

// BuildRetrievalPrompt は検索拡張回答用のプロンプトを構築する
func BuildRetrievalPrompt(text string, candidates []discovery.CandidateFile) string {
	var sb strings.Builder

	sb.WriteString("あなたはプロジェクトのファイルに精通した技術アシスタントです。\n")
	sb.WriteString("以下のコンテキスト情報を基に、ユーザーの質問に正確かつ簡潔に回答してください。\n\n")

	sb.WriteString("## 回答のガイドライン\n")
	sb.WriteString("- コンテキストに含まれる情報のみを使用して回答してください\n")
	sb.WriteString("- 根拠となるファイル名を明示してください\n")
	sb.WriteString("- 不明な点がある場合は、推測せずにその旨を述べてください\n\n")

	sb.WriteString("## コンテキスト: 関連ファイル\n")
	if len(candidates) > 0 {
		for i, c := range candidates {
			sb.WriteString(fmt.Sprintf("### [ファイル %d] %s\n", i+1, c.Name))
			sb.WriteString("```\n")
			sb.WriteString(c.Content)
			sb.WriteString("\n```\n\n")
		}
	} else {
		sb.WriteString("(該当するファイルはありません)\n\n")
	}

	sb.WriteString("## ユーザーの質問\n")
	sb.WriteString(text)
	sb.WriteString("\n\n## 回答\n")

	return sb.String()
}

// BuildChatPrompt は会話履歴とコンテキストファイルを含む通常回答用のプロンプトを構築する
func BuildChatPrompt(text string, history []Message, contextFiles []discovery.CandidateFile) string {
	var sb strings.Builder

	sb.WriteString("あなたは執筆とコーディングを支援するアシスタントです。\n")
	sb.WriteString("これまでの会話と与えられたコンテキストを踏まえて回答してください。\n\n")

	if len(contextFiles) > 0 {
		sb.WriteString("## コンテキストファイル\n")
		for _, c := range contextFiles {
			sb.WriteString(fmt.Sprintf("### %s\n", c.Name))
			sb.WriteString("```\n")
			sb.WriteString(c.Content)
			sb.WriteString("\n```\n\n")
		}
	}

	if len(history) > 0 {
		sb.WriteString("## 会話履歴\n")
		for _, m := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## ユーザーの発言\n")
	sb.WriteString(text)
	sb.WriteString("\n")

	return sb.String()
}
