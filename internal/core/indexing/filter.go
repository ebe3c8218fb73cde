package indexing

import (
	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFilter はインデックス対象外のファイル名を判定します
type IgnoreFilter struct {
	patterns *gitignore.GitIgnore
}

// NewIgnoreFilter は新しいIgnoreFilterを作成します。
// デフォルトの除外パターンに加えて、呼び出し側の追加パターンを受け付けます。
func NewIgnoreFilter(extraPatterns ...string) *IgnoreFilter {
	patterns := append(defaultIgnorePatterns(), extraPatterns...)
	return &IgnoreFilter{
		patterns: gitignore.CompileIgnoreLines(patterns...),
	}
}

// ShouldIgnore はパスが除外対象かどうかを判定します
func (f *IgnoreFilter) ShouldIgnore(path string) bool {
	if f.patterns == nil {
		return false
	}
	return f.patterns.MatchesPath(path)
}

// defaultIgnorePatterns はデフォルトの除外パターンを返します
func defaultIgnorePatterns() []string {
	return []string{
		// Git関連
		".git",
		".gitignore",
		".gitattributes",

		// 依存関係・ビルド成果物
		"node_modules",
		"vendor",
		"dist",
		"build",
		"target",
		"out",
		"bin",

		// IDE/エディタ関連
		".vscode",
		".idea",
		".DS_Store",
		"*.swp",

		// ログ・一時ファイル
		"*.log",
		"*.tmp",
		"tmp",

		// 環境変数・機密情報
		".env",
		".env.local",
		"*.pem",
		"*.key",

		// バイナリファイル
		"*.exe",
		"*.dll",
		"*.so",
		"*.dylib",
		"*.zip",
		"*.tar",
		"*.gz",

		// 画像・メディアファイル
		"*.png",
		"*.jpg",
		"*.jpeg",
		"*.gif",
		"*.ico",
		"*.mp4",
		"*.mp3",

		// フォント
		"*.ttf",
		"*.woff",
		"*.woff2",

		// データベース・キャッシュ
		"*.db",
		"*.sqlite",
		".cache",
		"__pycache__",
		"*.pyc",
	}
}
