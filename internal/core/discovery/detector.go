package discovery

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// ContentTypeDetector はファイルの種別（MIMEタイプ）を判定する。
// ファイルストアに種別が記録されていない行の補完に使う。
type ContentTypeDetector struct{}

// NewContentTypeDetector は ContentTypeDetector を生成する。
func NewContentTypeDetector() *ContentTypeDetector {
	return &ContentTypeDetector{}
}

// DetectContentType はファイル名と内容からMIMEタイプを判定する。
func (d *ContentTypeDetector) DetectContentType(name string, content []byte) string {
	filename := filepath.Base(name)
	language := enry.GetLanguage(filename, content)

	if mime := languageToMimeType(language); mime != "" {
		return mime
	}

	if len(content) > 0 {
		detected := http.DetectContentType(content)
		if idx := strings.Index(detected, ";"); idx != -1 {
			detected = detected[:idx]
		}
		return strings.TrimSpace(detected)
	}

	return "text/plain"
}

func languageToMimeType(language string) string {
	mapping := map[string]string{
		"Go":         "text/x-go",
		"JavaScript": "text/javascript",
		"TypeScript": "text/x-typescript",
		"Python":     "text/x-python",
		"Java":       "text/x-java",
		"C":          "text/x-c",
		"C++":        "text/x-c++",
		"C#":         "text/x-csharp",
		"Ruby":       "text/x-ruby",
		"PHP":        "text/x-php",
		"Rust":       "text/x-rust",
		"Swift":      "text/x-swift",
		"Kotlin":     "text/x-kotlin",
		"Shell":      "text/x-shellscript",
		"Bash":       "text/x-shellscript",
		"Markdown":   "text/markdown",
		"HTML":       "text/html",
		"CSS":        "text/css",
		"JSON":       "application/json",
		"YAML":       "text/x-yaml",
		"XML":        "text/xml",
		"SQL":        "text/x-sql",
		"Dockerfile": "text/x-dockerfile",
		"Makefile":   "text/x-makefile",
	}

	return mapping[language]
}
