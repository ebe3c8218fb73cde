package suggest

import "strings"

// MinimizedPair は最小化の結果。
// Minimized が true のとき、Prefix + Old + Suffix が元のoldContent全文、
// Prefix + New + Suffix が元のnewContent全文に厳密に一致する。
type MinimizedPair struct {
	Old       string
	New       string
	Prefix    string
	Suffix    string
	Minimized bool
}

// Minimize はoldContentとnewContentの共通接頭辞・接尾辞を取り除き、
// 差分を目視しやすい最小のペアに縮める。
//
// 接頭辞・接尾辞の境界は空白区切りのトークンを分断しない位置に限定する。
// 次のどちらかに該当する場合は最小化が曖昧さを生むため、全文のペアを返す:
//   - 縮めた結果oldが空でnewが非空（挿入のアンカーが失われる）
//   - 縮めたnewが縮めたoldを部分文字列として含み、かつ両者が異なる
func Minimize(oldContent, newContent string) MinimizedPair {
	full := MinimizedPair{Old: oldContent, New: newContent}

	if oldContent == newContent {
		return full
	}

	// 共通接頭辞（トークン境界まで後退）
	p := commonPrefixLen(oldContent, newContent)
	for p > 0 && !isSpaceByte(oldContent[p-1]) {
		p--
	}

	oldRest := oldContent[p:]
	newRest := newContent[p:]

	// 共通接尾辞（接尾辞の先頭が空白になる位置まで後退）
	s := commonSuffixLen(oldRest, newRest)
	for s > 0 && !isSpaceByte(oldRest[len(oldRest)-s]) {
		s--
	}

	oldRest = oldRest[:len(oldRest)-s]
	newRest = newRest[:len(newRest)-s]

	// 両側に共通して残った空白は接頭辞・接尾辞へ畳み込む
	for len(oldRest) > 0 && len(newRest) > 0 &&
		oldRest[0] == newRest[0] && isSpaceByte(oldRest[0]) {
		p++
		oldRest = oldRest[1:]
		newRest = newRest[1:]
	}
	for len(oldRest) > 0 && len(newRest) > 0 &&
		oldRest[len(oldRest)-1] == newRest[len(newRest)-1] && isSpaceByte(oldRest[len(oldRest)-1]) {
		s++
		oldRest = oldRest[:len(oldRest)-1]
		newRest = newRest[:len(newRest)-1]
	}

	if p == 0 && s == 0 {
		return full
	}

	// 安全性チェック: 失敗した場合は全文ペアにフォールバック
	if oldRest == "" && newRest != "" {
		return full
	}
	if oldRest != newRest && strings.Contains(newRest, oldRest) {
		return full
	}

	return MinimizedPair{
		Old:       oldRest,
		New:       newRest,
		Prefix:    oldContent[:p],
		Suffix:    oldContent[len(oldContent)-s:],
		Minimized: true,
	}
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// findOccurrences はneedleの重複しない出現開始位置を昇順で返す
func findOccurrences(haystack, needle string) []int {
	if needle == "" {
		return nil
	}

	var offsets []int
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return offsets
		}
		offsets = append(offsets, from+idx)
		from += idx + len(needle)
	}
}
