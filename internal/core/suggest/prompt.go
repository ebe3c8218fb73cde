package suggest

import (
	"fmt"
	"strings"

	"github.com/jinford/editpilot/internal/core/discovery"
)

// BuildSuggestPrompt は1ファイル分の差分提案用プロンプトを構築する。
// レスポンスは {"changes": [{"oldContent", "newContent"}, ...]} のJSONに固定する。
func BuildSuggestPrompt(file discovery.CandidateFile, request string) string {
	var sb strings.Builder

	sb.WriteString("あなたはコードとドキュメントの編集アシスタントです。\n")
	sb.WriteString("以下のファイルに対して、ユーザーの編集リクエストを満たす置換を提案してください。\n\n")

	sb.WriteString("## ルール\n")
	sb.WriteString("- oldContent はファイル内に一字一句そのまま存在するテキストでなければなりません\n")
	sb.WriteString("- 変更は互いに重複しない最小限の範囲にしてください\n")
	sb.WriteString("- このファイルに必要な変更がない場合は changes を空配列にしてください\n")
	sb.WriteString("- 次のJSONオブジェクトのみを出力してください: ")
	sb.WriteString(`{"changes": [{"oldContent": "...", "newContent": "..."}]}`)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("## ファイル: %s\n", file.Name))
	sb.WriteString("```\n")
	sb.WriteString(file.Content)
	sb.WriteString("\n```\n\n")

	sb.WriteString("## 編集リクエスト\n")
	sb.WriteString(request)
	sb.WriteString("\n")

	return sb.String()
}
