package llm

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scan-io-git/lintfix/internal/issues"
)

const fixInstruction = "Please provide only the entire fixed content of the file addressing all the issues listed above, " +
	"do not provide any explanation, do not wrap the response with backticks."

var languageByExt = map[string]string{
	".py":   "Python",
	".pyi":  "Python",
	".go":   "Go",
	".js":   "JavaScript",
	".jsx":  "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript",
	".rb":   "Ruby",
	".rs":   "Rust",
	".java": "Java",
	".sh":   "shell",
}

// languageOf guesses the source language from the file extension.
func languageOf(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "source"
}

// BuildPrompt renders the user message for one file: every issue with its offending line, then the whole file.
func BuildPrompt(req issues.FixRequest) string {
	lines := strings.Split(req.OriginalContents, "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "Fix the following issues in the %s code of the file %s:\n\n", languageOf(req.FilePath), req.FilePath)
	for i, issue := range req.Issues {
		fmt.Fprintf(&b, "%d. %s\n", i+1, issue.String())
		if issue.Line >= 1 && issue.Line <= len(lines) {
			fmt.Fprintf(&b, "   Problematic line: %s\n", strings.TrimRight(lines[issue.Line-1], "\r"))
		}
	}
	b.WriteString("\nHere's the current content of the file:\n\n")
	b.WriteString(req.OriginalContents)
	if !strings.HasSuffix(req.OriginalContents, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(fixInstruction)
	return b.String()
}

// ExtractFixedContent cleans a completion into a file body: a single surrounding Markdown fence is dropped
// and the original's trailing newline is kept.
func ExtractFixedContent(original, completion string) string {
	content := stripCodeFence(completion)
	if strings.HasSuffix(original, "\n") && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content
}

func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return s
	}
	firstNewline := strings.Index(trimmed, "\n")
	if firstNewline < 0 {
		return s
	}
	body := strings.TrimSuffix(trimmed[firstNewline+1:], "```")
	return body
}
