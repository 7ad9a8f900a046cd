package parser

import (
	"path/filepath"
	"strings"
)

// Language identifies the grammar used for a source file.
type Language int

const (
	// LanguageTypeScript covers .ts, .mts, .cts, .d.ts and .tsx.
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js, .jsx, .mjs and .cjs. Extraction is best
	// effort: the grammar has no type annotations or interfaces.
	LanguageJavaScript
	// LanguageUnknown is any other extension.
	LanguageUnknown
)

func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

var extensions = map[string]Language{
	".ts":  LanguageTypeScript,
	".mts": LanguageTypeScript,
	".cts": LanguageTypeScript,
	".tsx": LanguageTypeScript,
	".js":  LanguageJavaScript,
	".jsx": LanguageJavaScript,
	".mjs": LanguageJavaScript,
	".cjs": LanguageJavaScript,
}

// DetectLanguage detects the language from a file path.
func DetectLanguage(filePath string) Language {
	if lang, ok := extensions[strings.ToLower(filepath.Ext(filePath))]; ok {
		return lang
	}
	return LanguageUnknown
}

// IsTSXFile reports whether the TSX dialect of the TypeScript grammar applies.
func IsTSXFile(filePath string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ".tsx")
}

// ParseLanguageString converts "typescript"/"ts" or "javascript"/"js".
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(lang) {
	case "typescript", "ts":
		return LanguageTypeScript
	case "javascript", "js":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// SourceGlobs returns doublestar patterns matching every supported extension
// of the given languages.
func SourceGlobs(langs ...Language) []string {
	var globs []string
	for _, ext := range []string{".ts", ".mts", ".cts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"} {
		for _, lang := range langs {
			if extensions[ext] == lang {
				globs = append(globs, "**/*"+ext)
			}
		}
	}
	return globs
}
