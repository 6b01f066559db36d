package parse

import (
	"path/filepath"
	"strings"
)

// LanguageFor maps a file extension to the language name stored on File
// nodes. Unregistered extensions return "unknown".
func LanguageFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return "python"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".cs":
		return "csharp"
	case ".go":
		return "go"
	default:
		return "unknown"
	}
}

// Parse dispatches to the per-language extractor registered for path's
// extension. A nil error with an empty FileResult means there is no parser
// for this language; the file still becomes a File node with
// language=unknown, per the walker's contract.
func Parse(path string, content []byte) (FileResult, error) {
	lang := LanguageFor(path)
	switch lang {
	case "python":
		return parsePython(content)
	case "typescript", "javascript":
		return parseTypeScript(content, lang)
	case "csharp":
		return parseCSharp(content)
	case "go":
		return parseGo(content)
	default:
		return FileResult{Language: lang}, nil
	}
}
