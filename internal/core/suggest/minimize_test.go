package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimize_TrimsToSmallestDelta(t *testing.T) {
	pair := Minimize("const x = 1;", "const x = 10;")

	require.True(t, pair.Minimized)
	assert.Equal(t, "1;", pair.Old)
	assert.Equal(t, "10;", pair.New)
	assert.Equal(t, "const x = ", pair.Prefix)
	assert.Equal(t, "", pair.Suffix)
}

func TestMinimize_RoundTripReconstruction(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
	}{
		{"middle word", "foo bar baz", "foo qux baz"},
		{"trailing change", "const x = 1;", "const x = 10;"},
		{"leading change", "alpha shared tail", "beta shared tail"},
		{"multiline", "line one\nline two\nline three", "line one\nline 2\nline three"},
		{"whole string differs", "completely", "different"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair := Minimize(tt.old, tt.new)
			if !pair.Minimized {
				// 最小化しなかった場合は全文のまま
				assert.Equal(t, tt.old, pair.Old)
				assert.Equal(t, tt.new, pair.New)
				return
			}
			assert.Equal(t, tt.old, pair.Prefix+pair.Old+pair.Suffix)
			assert.Equal(t, tt.new, pair.Prefix+pair.New+pair.Suffix)
		})
	}
}

func TestMinimize_PureInsertionKeepsAnchor(t *testing.T) {
	// 縮めるとoldが空になる純粋な挿入は全文を維持する
	pair := Minimize("foo baz", "foo bar baz")

	assert.False(t, pair.Minimized)
	assert.Equal(t, "foo baz", pair.Old)
	assert.Equal(t, "foo bar baz", pair.New)
}

func TestMinimize_SelfReferentialReplacementKeepsFull(t *testing.T) {
	// 縮めたnewが縮めたoldを含む置換は曖昧なので全文を維持する
	pair := Minimize("call f(x) here", "call wrap(f(x)) here")

	assert.False(t, pair.Minimized)
	assert.Equal(t, "call f(x) here", pair.Old)
	assert.Equal(t, "call wrap(f(x)) here", pair.New)
}

func TestMinimize_NeverSplitsTokens(t *testing.T) {
	// 文字単位の共通接頭辞は "const x = 1" だが、トークンを分断しない
	pair := Minimize("value = alpha1", "value = alpha2")

	require.True(t, pair.Minimized)
	assert.Equal(t, "alpha1", pair.Old)
	assert.Equal(t, "alpha2", pair.New)
}

func TestMinimize_IdenticalStringsAreNotMinimized(t *testing.T) {
	pair := Minimize("same", "same")
	assert.False(t, pair.Minimized)
}

func TestFindOccurrences(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		needle   string
		want     []int
	}{
		{"three occurrences", "foo bar foo baz foo", "foo", []int{0, 8, 16}},
		{"no occurrence", "bar baz", "foo", nil},
		{"empty needle", "bar", "", nil},
		{"non-overlapping scan", "aaaa", "aa", []int{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findOccurrences(tt.haystack, tt.needle))
		})
	}
}

func TestClassifyReplacement(t *testing.T) {
	assert.Equal(t, ReplacementWord, ClassifyReplacement("short"))
	assert.Equal(t, ReplacementWord, ClassifyReplacement("exactly15chars!"))
	assert.Equal(t, ReplacementPhrase, ClassifyReplacement("this is a phrase longer than fifteen chars"))
	assert.Equal(t, ReplacementSentence, ClassifyReplacement(
		"this sentence is deliberately padded out so that it exceeds the fifty character phrase threshold comfortably"))
	assert.Equal(t, ReplacementBlock, ClassifyReplacement(
		"this block is deliberately padded out with enough repeated filler text to exceed the one hundred and fifty character sentence threshold set by the classifier buckets"))
}
