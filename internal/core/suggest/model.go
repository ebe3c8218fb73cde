package suggest

import "github.com/google/uuid"

// ReplacementType は最小化後の置換対象の大きさの区分。
// UI側の表示・トリアージ用途のみで、正しさには影響しない。
type ReplacementType string

const (
	ReplacementWord     ReplacementType = "word"
	ReplacementPhrase   ReplacementType = "phrase"
	ReplacementSentence ReplacementType = "sentence"
	ReplacementBlock    ReplacementType = "block"
)

const (
	wordMaxLen     = 15
	phraseMaxLen   = 50
	sentenceMaxLen = 150
)

// ClassifyReplacement は最小化済みの置換対象文字列を長さで区分する
func ClassifyReplacement(minimizedOld string) ReplacementType {
	switch n := len(minimizedOld); {
	case n <= wordMaxLen:
		return ReplacementWord
	case n <= phraseMaxLen:
		return ReplacementPhrase
	case n <= sentenceMaxLen:
		return ReplacementSentence
	default:
		return ReplacementBlock
	}
}

// Change はファイルに対する検証済みの置換候補1件。
//
// OldContentFull は生成時点のファイル内容に完全一致で存在することが保証される。
// OldContent / NewContent は共通接頭辞・接尾辞を取り除いた最小差分で、
// 最小化が安全でない場合は全文と同一になる。
type Change struct {
	ID              uuid.UUID       `json:"id"`
	FileID          uuid.UUID       `json:"fileId"`
	FileName        string          `json:"fileName"`
	OldContentFull  string          `json:"oldContentFull"`
	NewContentFull  string          `json:"newContentFull"`
	OldContent      string          `json:"oldContent"`
	NewContent      string          `json:"newContent"`
	OccurrenceIndex int             `json:"occurrenceIndex"`
	ReplacementType ReplacementType `json:"replacementType"`
	Context         *string         `json:"context,omitempty"`
}
